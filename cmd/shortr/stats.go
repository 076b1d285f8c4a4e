package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) clickCmd() *cobra.Command {
	var ip, userAgent string

	cmd := &cobra.Command{
		Use:   "click <shortcode>",
		Short: "Record a simulated visit to a short link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			click, err := c.app.Recorder.Record(cmd.Context(), args[0], ip, userAgent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Click recorded at %s from %s\n", click.Timestamp.Format("2006-01-02 15:04:05"), click.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&ip, "ip", "", "Client address to locate (empty for this machine)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "shortr-cli", "Source recorded with the click")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <shortcode>",
		Short: "Show click analytics for a short link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Analytics.Report(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			s := report.Summary
			fmt.Fprintf(out, "%s -> %s\n", report.ShortURL, report.OriginalURL)
			fmt.Fprintf(out, "Total clicks:     %d\n", s.TotalClicks)
			fmt.Fprintf(out, "Unique locations: %d\n", s.UniqueLocations)
			fmt.Fprintf(out, "Unique sources:   %d\n", s.UniqueSources)
			if s.LastClickTime != nil {
				fmt.Fprintf(out, "Last click:       %s\n", s.LastClickTime.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "Expired:          %t\n", s.IsExpired)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\nLOCATION\tCLICKS")
			for _, l := range report.TopLocations {
				fmt.Fprintf(tw, "%s\t%d\n", l.Location, l.Count)
			}
			fmt.Fprintln(tw, "\nDATE\tCLICKS")
			for _, d := range report.ClickTrends {
				fmt.Fprintf(tw, "%s\t%d\n", d.Date, d.Count)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of top locations (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List short links in creation order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.Links.ListLinks(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SHORTCODE\tCLICKS\tEXPIRES\tORIGINAL URL")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Shortcode, len(r.Clicks), r.ExpiryDate.Local().Format("2006-01-02 15:04"), r.OriginalURL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of links (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Links to skip")
	return cmd
}
