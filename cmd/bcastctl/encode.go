package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/luxfi/broadcast/pkg/config"
	"github.com/luxfi/broadcast/pkg/logger"
	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/request"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Build a request from flags and write it as one frame",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "kind",
				Aliases:  []string{"k"},
				Usage:    "Request kind: refresh, flush, force_merge, clear_cache",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Target name or pattern (can be specified multiple times)",
			},
			&cli.BoolFlag{
				Name:  "empty-targets",
				Usage: "Send an explicitly empty target list instead of an absent one",
			},
			&cli.StringFlag{
				Name:  "target-options",
				Usage: "Named option set to start from instead of the configured defaults: " + strings.Join(namedOptions(), ", "),
			},
			&cli.StringFlag{
				Name:  "expand-wildcards",
				Usage: "Comma-separated wildcard states: open, closed, hidden, all, none",
			},
			&cli.StringFlag{
				Name:  "ignore-unavailable",
				Usage: "Skip missing or closed targets (true/false)",
			},
			&cli.StringFlag{
				Name:  "allow-no-targets",
				Usage: "Allow wildcards that match nothing (true/false)",
			},
			&cli.StringFlag{
				Name:  "ignore-throttled",
				Usage: "Skip throttled targets (true/false)",
			},
			&cli.StringFlag{
				Name:  "timeout",
				Usage: "Request timeout, e.g. 30s (default: none, or defaults.timeout)",
			},
			&cli.StringFlag{
				Name:  "parent-task",
				Usage: "Parent task as node:id",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Write the binary frame instead of hex when stdout is not a terminal",
			},
			// flush
			&cli.BoolFlag{Name: "force", Usage: "flush: force the flush"},
			&cli.BoolFlag{Name: "wait-if-ongoing", Usage: "flush: wait for a running flush", Value: true},
			// force_merge
			&cli.IntFlag{Name: "max-num-segments", Usage: "force_merge: target segment count (-1 = unset)", Value: -1},
			&cli.BoolFlag{Name: "only-expunge-deletes", Usage: "force_merge: only expunge deleted documents"},
			&cli.BoolFlag{Name: "flush", Usage: "force_merge: flush after merging", Value: true},
			// clear_cache
			&cli.BoolFlag{Name: "query", Usage: "clear_cache: clear the query cache"},
			&cli.BoolFlag{Name: "fielddata", Usage: "clear_cache: clear the fielddata cache"},
			&cli.BoolFlag{Name: "request-cache", Usage: "clear_cache: clear the request cache"},
			&cli.StringSliceFlag{Name: "field", Usage: "clear_cache: limit fielddata clearing to these fields"},
		},
		Action: runEncode,
	}
}

func runEncode(ctx context.Context, c *cli.Command) error {
	req, err := buildRequest(c)
	if err != nil {
		return err
	}

	frame, err := newCodec().Marshal(req)
	if err != nil {
		return err
	}
	logger.Info("Encoded request", "kind", req.Kind(), "id", req.ID(), "bytes", len(frame))

	return writeFrame(os.Stdout, frame, c.Bool("raw") && !term.IsTerminal(int(os.Stdout.Fd())))
}

func writeFrame(w io.Writer, frame []byte, raw bool) error {
	if raw {
		_, err := w.Write(frame)
		return err
	}
	_, err := fmt.Fprintln(w, hex.EncodeToString(frame))
	return err
}

func buildRequest(c *cli.Command) (request.Request, error) {
	kind, err := request.ParseKind(c.String("kind"))
	if err != nil {
		return nil, err
	}

	var names []string
	switch {
	case c.IsSet("target"):
		names = c.StringSlice("target")
	case c.Bool("empty-targets"):
		names = []string{}
	}

	defaults, err := baseOptions(c.String("target-options"))
	if err != nil {
		return nil, err
	}
	opts, err := options.FromParameters(
		c.String("expand-wildcards"),
		c.String("ignore-unavailable"),
		c.String("allow-no-targets"),
		c.String("ignore-throttled"),
		defaults,
	)
	if err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(c)
	if err != nil {
		return nil, err
	}

	var req request.Request
	switch kind {
	case request.KindRefresh:
		req = request.NewRefreshRequest(names...).WithTargetOptions(opts).WithTimeout(timeout)
	case request.KindFlush:
		req = request.NewFlushRequest(names...).
			WithTargetOptions(opts).
			WithTimeout(timeout).
			WithForce(c.Bool("force")).
			WithWaitIfOngoing(c.Bool("wait-if-ongoing"))
	case request.KindForceMerge:
		segments := c.Int("max-num-segments")
		if segments < math.MinInt32 || segments > math.MaxInt32 {
			return nil, fmt.Errorf("max-num-segments %d out of range", segments)
		}
		req = request.NewForceMergeRequest(names...).
			WithTargetOptions(opts).
			WithTimeout(timeout).
			WithMaxNumSegments(int32(segments)).
			WithOnlyExpungeDeletes(c.Bool("only-expunge-deletes")).
			WithFlush(c.Bool("flush"))
	case request.KindClearCache:
		req = request.NewClearCacheRequest(names...).
			WithTargetOptions(opts).
			WithTimeout(timeout).
			WithQuery(c.Bool("query")).
			WithFielddata(c.Bool("fielddata")).
			WithRequestCache(c.Bool("request-cache")).
			WithFields(c.StringSlice("field")...)
	default:
		return nil, fmt.Errorf("kind %s has no encoder", kind)
	}

	if parent := c.String("parent-task"); parent != "" {
		nodeID, id, err := parseParentTask(parent)
		if err != nil {
			return nil, err
		}
		setParent(req, nodeID, id)
	}
	return req, nil
}

// baseOptions returns the named option set, or the configured defaults when
// name is empty.
func baseOptions(name string) (options.TargetOptions, error) {
	if name == "" {
		return cfg.DefaultTargetOptions()
	}
	opts, ok := options.Named[name]
	if !ok {
		return options.TargetOptions{}, fmt.Errorf("unknown target options %q (known: %s)", name, strings.Join(namedOptions(), ", "))
	}
	return opts, nil
}

func namedOptions() []string {
	names := lo.Keys(options.Named)
	slices.Sort(names)
	return names
}

func resolveTimeout(c *cli.Command) (*time.Duration, error) {
	if c.IsSet("timeout") {
		return config.ParseTimeout("timeout", c.String("timeout"))
	}
	return cfg.DefaultTimeout()
}

func parseParentTask(raw string) (string, int64, error) {
	nodeID, idPart, ok := strings.Cut(raw, ":")
	if !ok || nodeID == "" {
		return "", 0, fmt.Errorf("invalid parent task %q: expected node:id", raw)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid parent task id %q: %w", idPart, err)
	}
	return nodeID, id, nil
}

func setParent(req request.Request, nodeID string, id int64) {
	if p, ok := req.(interface{ SetParentTask(string, int64) }); ok {
		p.SetParentTask(nodeID, id)
	}
}
