package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/models"
	"github.com/damacus/iron-browser/internal/utils"
)

func newLsCmd(a *app) *cobra.Command {
	var (
		source  string
		query   string
		details bool
		tokens  string
	)

	cmd := &cobra.Command{
		Use:   "ls <bucket> [prefix]",
		Short: "List one page of a bucket folder",
		Long: `List the folders and objects directly below a prefix.

Use --tokens with the value printed after a truncated listing to fetch the
next page.

Examples:
  iron-browser ls photos
  iron-browser ls photos 2024/ --details
  iron-browser ls photos 2024/ --query beach --source archive`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := browser.ListRequest{
				Bucket:               args[0],
				TokenStack:           tokens,
				Query:                query,
				IncludeFolderDetails: details,
			}
			if len(args) > 1 {
				req.Prefix = args[1]
			}

			listing, err := a.registry.Resolve(source).List(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), listing, details)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source name (default: configured default source)")
	cmd.Flags().StringVar(&query, "query", "", "case-insensitive name filter; scans further pages")
	cmd.Flags().BoolVar(&details, "details", false, "aggregate size and last modification per folder")
	cmd.Flags().StringVar(&tokens, "tokens", "", "token stack of the page to show")
	return cmd
}

func printListing(out io.Writer, listing *models.Listing, details bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSIZE\tLAST MODIFIED")
	for _, f := range listing.Folders {
		size := "-"
		if details && f.HasStats() {
			size = utils.FormatFileSize(f.Size)
		}
		_, _ = fmt.Fprintf(w, "%s/\t%s\t%s\n", f.Name, size, utils.FormatTime(f.LastModified))
	}
	for _, o := range listing.Objects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", o.Name, utils.FormatFileSize(o.Size), utils.FormatTime(o.LastModified))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if listing.HasNext {
		_, err := fmt.Fprintf(out, "\nMore entries available: --tokens %s\n", listing.Next)
		return err
	}
	return nil
}
