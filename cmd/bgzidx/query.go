package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/genomics"
	"github.com/genomicsio/bgzidx/index"
	"github.com/genomicsio/bgzidx/query"
)

var (
	queryIndexPath string
	queryCount     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <archive.bgz> <region>",
	Short: "Print the records overlapping a region",
	Long: `Print the records of a BGZF archive that overlap a region.

The region has the form ref:start-end with a numeric reference sequence ID
and 1-based inclusive coordinates, for example 0:1000-2000.  The archive
must have been indexed; only the chunks the index maps to the region are
read and decoded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		region, err := genomics.ParseRegion(args[1])
		if err != nil {
			return err
		}

		indexPath := queryIndexPath
		if indexPath == "" {
			indexPath = args[0] + ".gbi"
		}
		indexFile, err := os.Open(indexPath)
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		idx, err := index.Read(indexFile)
		indexFile.Close()
		if err != nil {
			return fmt.Errorf("reading index: %w", err)
		}

		archive, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer archive.Close()

		q, err := query.New(bgzf.NewReader(archive), idx, region)
		if err != nil {
			return err
		}

		var count int
		for q.Next() {
			count++
			if queryCount {
				continue
			}
			record := q.Record()
			fmt.Printf("%d:%d-%d\t%s\n", record.ReferenceID, record.Start+1, record.End(), record.Data)
		}
		if err := q.Err(); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		if queryCount {
			fmt.Println(count)
		}
		log.Debug().Int("records", count).Stringer("region", region).Msg("query done")
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryIndexPath, "index", "i", "", "index path (default <archive>.gbi)")
	queryCmd.Flags().BoolVarP(&queryCount, "count", "c", false, "print only the number of overlapping records")
}
