package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/genomicsio/bgzidx/bgzf"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input> <output.bgz>",
	Short: "Compress a file into a BGZF archive",
	Long: `Compress a file into a BGZF archive.

The input bytes are split into independently decompressible blocks and the
archive is terminated with the canonical end-of-stream marker, so the result
supports random access by virtual address.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer in.Close()

		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()

		w := bgzf.NewWriter(out)
		n, err := io.Copy(w, in)
		if err != nil {
			return fmt.Errorf("compressing: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("finishing archive: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("closing output: %w", err)
		}

		log.Info().Str("archive", args[1]).Int64("bytes", n).Msg("compressed")
		return nil
	},
}

var decompressCmd = &cobra.Command{
	Use:   "decompress <input.bgz> [output]",
	Short: "Decompress a BGZF archive",
	Long: `Decompress a BGZF archive to a file, or to standard output if no
output is named.  A truncated archive (one missing the end-of-stream marker)
is reported as an error rather than silently accepted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer in.Close()

		out := io.Writer(os.Stdout)
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			out = f
		}

		if _, err := io.Copy(out, bgzf.NewReader(in)); err != nil {
			return fmt.Errorf("decompressing: %w", err)
		}
		return nil
	},
}
