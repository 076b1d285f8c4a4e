package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shortr/internal/engine/links"
)

func (c *cli) shortenCmd() *cobra.Command {
	var validity int
	var code string

	cmd := &cobra.Command{
		Use:   "shorten <url>",
		Short: "Create a short link for one URL.",
		Example: `  shortr shorten https://go.dev/doc --validity 60
  shortr shorten https://go.dev --code godev`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := c.app.Links.Shorten(cmd.Context(), links.Candidate{
				OriginalURL:     args[0],
				ValidityMinutes: validity,
				PreferredCode:   code,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Short URL:    %s\n", link.ShortURL)
			fmt.Fprintf(out, "Shortcode:    %s\n", link.Shortcode)
			fmt.Fprintf(out, "Original URL: %s\n", link.OriginalURL)
			fmt.Fprintf(out, "Expires:      %s\n", link.ExpiryDate.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&validity, "validity", "v", defaultValidityMinutes, "Validity in minutes (1-525600)")
	cmd.Flags().StringVarP(&code, "code", "c", "", "Preferred shortcode (alphanumeric, max 20)")
	return cmd
}

func (c *cli) batchCmd() *cobra.Command {
	var validity int

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Shorten every URL listed in a file ('-' for stdin).",
		Long: `Each non-empty line holds a URL, optionally followed by a validity in
minutes and a preferred shortcode. Lines starting with # are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			candidates, err := parseBatch(r, validity)
			if err != nil {
				return err
			}

			result := c.app.Links.ShortenBatch(cmd.Context(), candidates)
			out := cmd.OutOrStdout()
			for _, link := range result.Issued {
				fmt.Fprintf(out, "OK    %s -> %s\n", link.ShortURL, link.OriginalURL)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(out, "FAIL  #%d %s: %s\n", f.Index+1, f.OriginalURL, f.Message)
			}
			issued, failed := result.Counts()
			fmt.Fprintf(out, "%d issued, %d failed\n", issued, failed)
			return nil
		},
	}
	cmd.Flags().IntVarP(&validity, "validity", "v", defaultValidityMinutes, "Default validity in minutes")
	return cmd
}

func parseBatch(r io.Reader, defaultValidity int) ([]links.Candidate, error) {
	var candidates []links.Candidate
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		c := links.Candidate{OriginalURL: fields[0], ValidityMinutes: defaultValidity}
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid validity %q", line, fields[1])
			}
			c.ValidityMinutes = v
		}
		if len(fields) > 2 {
			c.PreferredCode = fields[2]
		}
		candidates = append(candidates, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no URLs found")
	}
	return candidates, nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
