package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genomicsio/bgzidx/index"
)

var statsCmd = &cobra.Command{
	Use:   "stats <archive.bgz.gbi>",
	Short: "Summarize a coordinate index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer f.Close()

		idx, err := index.Read(f)
		if err != nil {
			return fmt.Errorf("reading index: %w", err)
		}

		fmt.Printf("references: %d\n", len(idx.References))
		fmt.Printf("unplaced records: %d\n", idx.Unplaced)
		for i, ref := range idx.References {
			if ref == nil {
				fmt.Printf("  reference %d: no records\n", i)
				continue
			}
			var chunks int
			for _, c := range ref.Bins {
				chunks += len(c)
			}
			fmt.Printf("  reference %d: mapped=%d unmapped=%d bins=%d chunks=%d intervals=%d span=%s\n",
				i, ref.Mapped, ref.Unmapped, len(ref.Bins), chunks, len(ref.Intervals), ref.Span)
		}
		return nil
	},
}
