package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/broadcast/pkg/encoding"
	"github.com/luxfi/broadcast/pkg/logger"
	"github.com/luxfi/broadcast/pkg/request"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode one frame and print it as JSON",
		ArgsUsage: "[hex]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read the frame from this file instead of stdin",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Input is the binary frame rather than hex",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Print single-line JSON",
			},
		},
		Action: runDecode,
	}
}

func runDecode(ctx context.Context, c *cli.Command) error {
	frame, err := readFrame(c)
	if err != nil {
		return err
	}

	req, err := newCodec().Unmarshal(frame)
	if err != nil {
		return err
	}
	logger.Info("Decoded request", "kind", req.Kind(), "id", req.ID())

	out, err := encoding.ViewOf(req).JSON(!c.Bool("compact"))
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func readFrame(c *cli.Command) ([]byte, error) {
	if arg := c.Args().First(); arg != "" {
		return parseFrame([]byte(arg), false)
	}

	var in io.Reader = os.Stdin
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return parseFrame(data, c.Bool("raw"))
}

func parseFrame(data []byte, raw bool) ([]byte, error) {
	if raw {
		return data, nil
	}
	frame, err := hex.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return frame, nil
}

func runKinds(ctx context.Context, c *cli.Command) error {
	return printKinds(os.Stdout)
}

func printKinds(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTYPE\tDATA STREAMS")
	for _, kind := range request.Kinds() {
		fmt.Fprintf(tw, "%s\t%d\t%t\n", kind, kind.MessageType(), kind.IncludesDataStreams())
	}
	return tw.Flush()
}
