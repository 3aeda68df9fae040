package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tiwari1302/commoncrawl/internal/logger"
)

// errPartial은 실행은 끝났지만 일부 항목이 실패했음을 뜻합니다. 종료 코드 2.
var errPartial = errors.New("some items failed")

var rootFlags struct {
	config   string
	jsonLogs bool
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "ccwat",
	Short: "Extract Common Crawl WAT/WARC records by offset",
	Long: `ccwat reads the result of a Common Crawl index query (url, warc_filename,
offset, length) and extracts the addressed records.

Each file is first tried with one range read per record. When a range does
not decode to a complete record the file is read once from start to end and
the remaining records are picked up on the way.

Examples:
  ccwat run --input results.csv --local-out ./outputs
  ccwat run --input s3://bucket/athena/results.csv.gz --remote-out s3://bucket/extracted/
  ccwat scan crawl-data/CC-MAIN-2024-10/segments/.../wat/file.warc.wat.gz --limit 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(rootFlags.jsonLogs, rootFlags.logLevel); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.config, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.jsonLogs, "json-logs", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
}

func main() {
	// AWS 자격 증명 등을 .env에서 읽음. 파일이 없어도 됨
	_ = godotenv.Load()

	err := rootCmd.Execute()
	logger.Cleanup()
	switch {
	case err == nil:
	case errors.Is(err, errPartial):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hints := errors.FlattenHints(err); hints != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hints)
		}
		os.Exit(1)
	}
}
