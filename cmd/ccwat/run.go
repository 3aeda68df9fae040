package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tiwari1302/commoncrawl/internal/extract"
	"github.com/tiwari1302/commoncrawl/internal/logger"
	"github.com/tiwari1302/commoncrawl/internal/sink"
	"github.com/tiwari1302/commoncrawl/internal/source"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

var runFlags struct {
	input        string
	format       string
	localOut     string
	remoteOut    string
	maxWorkers   int
	noRangeReads bool
	checkpoint   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract every record listed in a query result",
	Long: `Extract every record listed in a query result file.

The input is a CSV (header row required) or JSON lines file with the columns
url, warc_filename, offset, length and optionally wat_s3_url. It can be a local
path or an s3:// / https:// URL, optionally gzip compressed.

Exit status is 0 when every record was extracted, 2 when some records failed
and 1 when the run itself failed.`,
	RunE: runExtract,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.input, "input", "i", "", "query result file (required)")
	runCmd.Flags().StringVar(&runFlags.format, "format", "", "input format: csv or jsonl (default: from extension)")
	runCmd.Flags().StringVar(&runFlags.localOut, "local-out", "", "local output directory")
	runCmd.Flags().StringVar(&runFlags.remoteOut, "remote-out", "", "upload finished chunks to this s3:// prefix or directory")
	runCmd.Flags().IntVar(&runFlags.maxWorkers, "max-workers", 0, "files processed in parallel")
	runCmd.Flags().BoolVar(&runFlags.noRangeReads, "no-range-reads", false, "skip range reads and stream every file")
	runCmd.Flags().BoolVar(&runFlags.checkpoint, "checkpoint", false, "skip files recorded as completed in local-out")
	_ = runCmd.MarkFlagRequired("input")
}

func loadRunConfig(cmd *cobra.Command) (*commoncrawl.Config, error) {
	cfg, err := commoncrawl.LoadConfig(rootFlags.config)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("local-out") {
		cfg.LocalOut = runFlags.localOut
	}
	if flags.Changed("remote-out") {
		cfg.RemoteOut = runFlags.remoteOut
	}
	if flags.Changed("max-workers") {
		cfg.Workers = runFlags.maxWorkers
	}
	if flags.Changed("no-range-reads") {
		cfg.SetRangeReads(!runFlags.noRangeReads)
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint = runFlags.checkpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.Logger

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Warnw("[종료] 중단 신호 수신, 진행 중인 파일을 정리합니다")
			cancel()
		case <-ctx.Done():
		}
	}()

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	resolver := source.Resolver{BaseURL: cfg.BaseURL, Kind: cfg.SourceKind}
	items, err := source.Load(ctx, store, runFlags.input, source.Format(runFlags.format), resolver)
	if err != nil {
		return err
	}
	log.Infow("[입력] 작업 로드", "input", runFlags.input, "items", len(items))

	var uploader sink.Uploader
	if cfg.RemoteOut != "" {
		uploader = store
	}
	out, err := sink.New(sink.Options{
		LocalDir:  cfg.LocalOut,
		RemoteOut: cfg.RemoteOut,
		ChunkSize: cfg.ChunkSize,
		Compress:  cfg.Compress(),
		RunID:     runID,
	}, uploader, log)
	if err != nil {
		return errors.Mark(err, extract.ErrWrite)
	}

	validator := extract.NewValidator(commoncrawl.NewExtractor(cfg.Extract))
	coord := extract.NewCoordinator(
		extract.Options{
			UseRangeReads: cfg.RangeReads(),
			MaxWorkers:    cfg.Workers,
		},
		extract.NewRangeFetcher(store),
		validator,
		extract.NewFallbackStreamer(store, cfg.MatchTargetURI, log),
		out,
		log,
	)
	if cfg.Checkpoint {
		cp, err := sink.OpenCheckpoint(cfg.LocalOut)
		if err != nil {
			return err
		}
		log.Infow("[입력] 완료 로그 로드", "completed", cp.Len())
		coord.WithCheckpoint(cp)
	}

	summary, runErr := coord.Run(ctx, items)
	closeErr := out.Close(ctx)
	summary.RunID = runID
	printSummary(summary, out.Chunks())

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	if summary.HasFailures() {
		return errPartial
	}
	return nil
}
