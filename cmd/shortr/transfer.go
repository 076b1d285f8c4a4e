package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shortr/internal/engine/links"
)

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every link and its clicks as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.Links.ListLinks(cmd.Context(), 0, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return links.Export(out, records)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load links from an export ('-' for stdin). Existing shortcodes are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := links.ParseSnapshot(r)
			if err != nil {
				return err
			}

			res, err := c.app.Links.Import(cmd.Context(), records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d imported, %d skipped\n", res.Imported, res.Skipped)
			return nil
		},
	}
}
