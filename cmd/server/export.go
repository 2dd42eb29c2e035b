package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/archive"
	"github.com/damacus/iron-browser/internal/browser"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		source string
		prefix string
		keys   []string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <bucket>",
		Short: "Write a folder or a set of objects to an archive",
		Long: `Export every object below --prefix, or the objects named by --key, into a
zip, tar.gz or tar.zst archive.

Examples:
  iron-browser export photos --prefix 2024/may/
  iron-browser export photos --key 2024/cat.jpg --key readme.md -o picks.tar.zst --format tar.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := archive.ParseFormat(format)
			if err != nil {
				return err
			}

			base := "download"
			if prefix != "" {
				if browser.NormalizePrefix(prefix) == "" {
					return fmt.Errorf("--prefix must not be blank")
				}
				base = browser.FolderName(browser.NormalizePrefix(prefix))
			} else if len(browser.DistinctKeys(keys)) == 0 {
				return fmt.Errorf("no objects selected for export")
			}
			if output == "" {
				output = archive.FileName(base, f, time.Now())
			}

			b := a.registry.Resolve(source)
			return exportArchive(cmd.OutOrStdout(), a.logger, output, f, func(sink archive.Sink) (map[string]int64, error) {
				if prefix != "" {
					return b.ExportPrefix(cmd.Context(), args[0], prefix, sink)
				}
				return b.ExportKeys(cmd.Context(), args[0], keys, sink)
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source name (default: configured default source)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "export every object below this folder")
	cmd.Flags().StringArrayVar(&keys, "key", nil, "object key to export (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default <name>-<timestamp>.<ext>)")
	cmd.Flags().StringVar(&format, "format", "zip", "archive format (zip|tar.gz|tar.zst)")
	cmd.MarkFlagsMutuallyExclusive("prefix", "key")
	cmd.MarkFlagsOneRequired("prefix", "key")
	return cmd
}

// exportArchive writes an archive to path. The file is removed when the
// export fails so no truncated archive is left behind.
func exportArchive(out io.Writer, logger *zap.Logger, path string, f archive.Format, export func(archive.Sink) (map[string]int64, error)) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	fail := func(err error) error {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}

	sink, err := archive.NewSink(f, file)
	if err != nil {
		return fail(err)
	}
	transferred, err := export(sink)
	if err != nil {
		archive.Abort(sink)
		logger.Error("Export failed", zap.String("path", path), zap.Error(err))
		return fail(err)
	}
	if err := sink.Close(); err != nil {
		return fail(fmt.Errorf("finalize archive: %w", err))
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	_, err = fmt.Fprintf(out, "Wrote %d entries to %s\n", len(transferred), path)
	return err
}
