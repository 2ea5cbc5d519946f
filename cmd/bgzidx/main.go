// Command bgzidx provides tools for BGZF block-compressed archives of
// alignment records: compression, index construction and region queries.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/genomicsio/bgzidx/internal/logx"
)

var (
	verbose    bool
	cpuProfile bool

	log zerolog.Logger

	profiler interface{ Stop() }
)

var rootCmd = &cobra.Command{
	Use:   "bgzidx",
	Short: "Seekable block compression and coordinate-indexed region queries",
	Long: `bgzidx works with BGZF block-compressed archives of alignment records.

An archive is a sequence of independently decompressible blocks, addressable
by 64-bit virtual positions.  A coordinate index maps genomic intervals to
the byte ranges of the archive that could contain overlapping records, so a
region query touches only the blocks it needs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logx.NewLogger(verbose)
		if cpuProfile {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("bgzidx version 0.1.0")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&cpuProfile, "profile", false, "write a CPU profile to the working directory")
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
