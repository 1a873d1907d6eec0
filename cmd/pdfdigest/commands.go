package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/kirillkom/pdf-digest/internal/bootstrap"
	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/export"
	"github.com/kirillkom/pdf-digest/internal/observability/logging"
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "pdfdigest",
		Usage:     "split a PDF into sentence blocks and summarize it",
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:      "blocks",
				Usage:     "print the sentence blocks of a document",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "number of blocks to print, 0 prints all"},
				},
				Action: blocksAction,
			},
			{
				Name:      "summarize",
				Usage:     "print an abstractive summary of a document",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "length", Aliases: []string{"l"}, Usage: "target summary length in words, 0 uses the configured default"},
				},
				Action: summarizeAction,
			},
			{
				Name:      "export",
				Usage:     "write blocks and an optional summary to a txt or xlsx file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: string(export.FormatText), Usage: "txt or xlsx"},
					&cli.StringFlag{Name: "out", Usage: "output path, defaults to <name>-digest.<format>"},
					&cli.BoolFlag{Name: "summary", Usage: "summarize before exporting"},
					&cli.IntFlag{Name: "length", Usage: "target summary length in words"},
				},
				Action: exportAction,
			},
		},
	}
}

type loaded struct {
	app     *bootstrap.App
	session *domain.Session
}

// load wires an in-memory pipeline and opens a session for the file argument.
func load(c *cli.Context) (*loaded, error) {
	path := c.Args().First()
	if path == "" {
		return nil, fmt.Errorf("missing FILE argument")
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.SessionStore = "memory"
	slog.SetDefault(logging.New(logging.Options{Service: "pdfdigest", Level: cfg.LogLevel, Format: logging.FormatText, Writer: c.App.ErrWriter}))

	app, err := bootstrap.New(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	session, err := app.IngestUC.Open(c.Context, domain.Upload{Filename: filepath.Base(path), Body: body})
	if err != nil {
		app.Close()
		return nil, describe(err)
	}
	for _, diagnostic := range session.Document.Diagnostics {
		fmt.Fprintln(c.App.ErrWriter, "warning:", diagnostic)
	}
	return &loaded{app: app, session: session}, nil
}

func blocksAction(c *cli.Context) error {
	rt, err := load(c)
	if err != nil {
		return err
	}
	defer rt.app.Close()

	blocks := rt.session.Document.Blocks
	visible := domain.VisibleBlocks(blocks, c.Int("n"))
	out := c.App.Writer
	fmt.Fprintf(out, "%s: %d page(s), %d word(s), %d block(s)\n\n", rt.session.Document.Filename, rt.session.Document.PageCount, rt.session.Document.WordCount(), len(blocks))
	for idx, block := range visible {
		fmt.Fprintf(out, "%d. %s\n", idx+1, block)
	}
	return nil
}

func summarizeAction(c *cli.Context) error {
	rt, err := load(c)
	if err != nil {
		return err
	}
	defer rt.app.Close()

	result, err := summarize(c.Context, rt, c.Int("length"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n\n(%d words, target %d, %.1fs)\n", result.Text, result.WordCount(), result.TargetLength, result.Duration.Seconds())
	return nil
}

func exportAction(c *cli.Context) error {
	exporter, err := export.ForFormat(c.String("format"))
	if err != nil {
		return describe(err)
	}
	rt, err := load(c)
	if err != nil {
		return err
	}
	defer rt.app.Close()

	session := rt.session
	if c.Bool("summary") {
		if _, err := summarize(c.Context, rt, c.Int("length")); err != nil {
			return err
		}
		if session, err = rt.app.SessionUC.Get(c.Context, session.ID); err != nil {
			return describe(err)
		}
	}

	target := c.String("out")
	if target == "" {
		target = export.Filename(session, exporter)
	}
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if err := exporter.Write(file, session); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	fmt.Fprintln(c.App.Writer, target)
	return nil
}

func summarize(ctx context.Context, rt *loaded, length int) (*domain.SummaryResult, error) {
	if length == 0 {
		length = rt.app.SummarizeUC.LengthRange().Default
	}
	result, err := rt.app.SummarizeUC.Summarize(ctx, rt.session.ID, length)
	if err != nil {
		return nil, describe(err)
	}
	return result, nil
}

func describe(err error) error {
	failure := domain.DescribeError(err)
	return fmt.Errorf("%s: %s", failure.Kind, failure.Message)
}
