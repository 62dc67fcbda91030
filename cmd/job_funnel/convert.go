package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-funnel/internal/convert"
)

var (
	convertSource string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a feed file into ingestion items",
	Long:  `Convert an RSS/Atom XML feed or a platform search-JSON dump into the items payload accepted by POST /ingest/jobs. The result is printed to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertSource, "source", "", "Source label for the converted items")
	convertCmd.Flags().StringVar(&convertFormat, "format", "rss", "Input format: rss or platform-json")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var items []map[string]any
	switch convertFormat {
	case "rss":
		if convertSource == "" {
			convertSource = "rss"
		}
		items, err = convert.FromRSS(string(data), convertSource, time.Now().UTC())
	case "platform-json":
		if convertSource == "" {
			convertSource = "platform"
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
		items, err = convert.FromPlatformJSON(doc, convertSource, time.Now().UTC())
	default:
		return fmt.Errorf("unknown format %q (want rss or platform-json)", convertFormat)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"items": items})
}
