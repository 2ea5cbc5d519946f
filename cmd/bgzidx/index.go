package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/index"
)

var indexOutput string

var indexCmd = &cobra.Command{
	Use:   "index <archive.bgz>",
	Short: "Build a coordinate index for a record archive",
	Long: `Build a coordinate index for a BGZF archive of alignment records.

The archive is scanned once in stream order; every placed record is assigned
to a bin and to the linear index tiles it spans.  The index is written next
to the archive as <archive.bgz>.gbi unless --output names another path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer in.Close()

		idx, err := index.Build(bgzf.NewReader(in))
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}

		path := indexOutput
		if path == "" {
			path = args[0] + ".gbi"
		}
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating index file: %w", err)
		}
		defer out.Close()
		if err := index.Write(out, idx); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("closing index file: %w", err)
		}

		var mapped, unmapped uint64
		for _, ref := range idx.References {
			if ref != nil {
				mapped += ref.Mapped
				unmapped += ref.Unmapped
			}
		}
		log.Info().
			Str("index", path).
			Int("references", len(idx.References)).
			Uint64("mapped", mapped).
			Uint64("unmapped", unmapped).
			Uint64("unplaced", idx.Unplaced).
			Msg("indexed")
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "index output path")
}
