package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/vigilsec/promptwall/pkg/llm"
	"github.com/vigilsec/promptwall/pkg/report"
	"github.com/vigilsec/promptwall/pkg/scanner"
	"github.com/vigilsec/promptwall/pkg/store"
	"github.com/vigilsec/promptwall/pkg/types"
)

// scanOptions holds the scan-specific flags.
type scanOptions struct {
	root *rootOptions

	file     string
	json     bool
	tail     bool
	withLLM  bool
	provider string
	storeDB  string
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{root: root}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan input and produce a risk report",
		Long: `Scan text from stdin or a file against the active rule set. The exit
code reflects the risk band: 0 low, 2 medium, 3 high.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a file to scan; omit to read stdin")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Emit the structured JSON report")
	cmd.Flags().BoolVar(&opts.tail, "tail", false, "Watch --file for changes and rescan")
	cmd.Flags().BoolVar(&opts.withLLM, "with-llm", false, "Augment the report with an LLM verdict")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Override the LLM provider for this scan")
	cmd.Flags().StringVar(&opts.storeDB, "store", "", "Append the report to a SQLite history database")

	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions) error {
	ctx := cmd.Context()

	engine, err := opts.root.newEngine()
	if err != nil {
		return err
	}

	var enricher llm.Client
	if opts.withLLM {
		enricher, err = opts.newEnricher()
		if err != nil {
			return err
		}
	}

	var history *store.Store
	if opts.storeDB != "" {
		history, err = store.Open(opts.storeDB)
		if err != nil {
			return err
		}
		defer history.Close()
	}

	if opts.tail {
		if opts.file == "" {
			return fmt.Errorf("--tail requires --file to specify a path")
		}
		return opts.tailFile(ctx, cmd, engine, enricher, history)
	}

	text, err := readInput(opts.file, opts.root.maxInputBytes)
	if err != nil {
		return err
	}
	code, err := opts.scanOnce(ctx, cmd, engine, enricher, history, text, opts.sourceLabel())
	if err != nil {
		return err
	}
	exitCode = code
	return nil
}

// scanOnce runs the full pipeline for one input snapshot and returns the
// band-derived exit code.
func (opts *scanOptions) scanOnce(ctx context.Context, cmd *cobra.Command, engine *scanner.Engine, enricher llm.Client, history *store.Store, text, source string) (int, error) {
	rep, err := engine.Scan(ctx, text)
	if err != nil {
		return 0, err
	}

	if enricher != nil {
		verdict, err := enricher.Enrich(ctx, text, rep)
		if err != nil {
			return 0, fmt.Errorf("heuristic scan succeeded but enrichment failed: %w", err)
		}
		rep.AttachVerdict(verdict)
	}

	if history != nil {
		id, err := history.AddReport(source, rep)
		if err != nil {
			return 0, err
		}
		slog.Debug("scan recorded", "id", id, "store", opts.storeDB)
	}

	format := report.FormatHuman
	if opts.json {
		format = report.FormatJSON
	}
	rendered, err := report.Render(rep, format)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)

	return exitCodeForBand(rep.RiskBand), nil
}

// tailFile rescans the watched file on every change until interrupted, then
// exits with the last report's band code.
func (opts *scanOptions) tailFile(ctx context.Context, cmd *cobra.Command, engine *scanner.Engine, enricher llm.Client, history *store.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(opts.file); err != nil {
		return fmt.Errorf("watching %s: %w", opts.file, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var lastSnapshot string
	rescan := func() error {
		text, err := readInput(opts.file, opts.root.maxInputBytes)
		if err != nil {
			return err
		}
		if text == lastSnapshot {
			return nil
		}
		lastSnapshot = text
		fmt.Fprintf(cmd.OutOrStdout(), "\n=== %s ===\n", opts.file)
		code, err := opts.scanOnce(ctx, cmd, engine, enricher, history, text, opts.file)
		if err != nil {
			return err
		}
		exitCode = code
		return nil
	}

	if err := rescan(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigs:
			fmt.Fprintf(cmd.ErrOrStderr(), "Stopping tail for %s\n", opts.file)
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := rescan(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// readInput reads the scan input, enforcing the configured size cap.
func readInput(path string, maxBytes int64) (string, error) {
	var r io.Reader
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		defer f.Close()
		r = f
	} else {
		r = os.Stdin
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("input exceeds size cap of %d bytes", maxBytes)
	}
	return string(data), nil
}

// newEnricher resolves LLM settings: environment first, then the --config
// file's llm section, then the --provider flag.
func (opts *scanOptions) newEnricher() (llm.Client, error) {
	settings := llm.EnvSettings()
	cfg, err := opts.root.loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.LLM != nil {
		settings = settings.Merge(*cfg.LLM)
	}
	if opts.provider != "" {
		settings.Provider = opts.provider
	}
	return llm.NewClient(settings)
}

func (opts *scanOptions) sourceLabel() string {
	if opts.file != "" {
		return opts.file
	}
	return "stdin"
}

func exitCodeForBand(band types.RiskBand) int {
	switch band {
	case types.BandMedium:
		return 2
	case types.BandHigh:
		return 3
	default:
		return 0
	}
}
