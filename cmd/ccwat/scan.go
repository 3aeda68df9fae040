package main

import (
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tiwari1302/commoncrawl/internal/logger"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

var scanLimit int

var scanCmd = &cobra.Command{
	Use:   "scan <uri>",
	Short: "List the gzip members of a WAT/WARC file with their offsets",
	Long: `List the gzip members of a WAT or WARC file: compressed offset, length,
WARC-Type, target URI and, for WAT records, the offset of the WARC record they
describe. Use it to check offsets from a query by hand.

A relative path (crawl-data/...) is resolved against base_url.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "n", 20, "stop after this many members (0 = all)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := commoncrawl.LoadConfig(rootFlags.config)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := buildStore(ctx, cfg, logger.Logger)
	if err != nil {
		return err
	}

	uri := commoncrawl.ResolveObjectURL(cfg.BaseURL, args[0])
	body, err := store.Open(ctx, uri)
	if err != nil {
		return errors.Wrapf(err, "open %s", uri)
	}
	defer body.Close()

	rows := pterm.TableData{{"offset", "length", "type", "target uri", "warc offset"}}
	scanner := commoncrawl.NewMemberScanner(body)
	for n := 0; scanLimit == 0 || n < scanLimit; n++ {
		m, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "member %d at offset %d", n, scanner.Offset())
		}

		typ, target, container := "?", "", ""
		if rec, err := commoncrawl.ParseRecord(m.Data); err != nil {
			logger.Logger.Debugw("[스캔] 레코드 해석 실패", "offset", m.Offset, "error", err)
		} else {
			typ, target = rec.Type(), rec.TargetURI()
			if commoncrawl.IsWAT(rec) {
				if ref := commoncrawl.WATContainer(rec.Block); ref.OK {
					container = strconv.FormatInt(ref.Offset, 10)
				}
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(m.Offset, 10),
			strconv.FormatInt(m.Length, 10),
			typ,
			target,
			container,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
