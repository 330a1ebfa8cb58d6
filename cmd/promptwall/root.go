package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vigilsec/promptwall/pkg/llm"
	"github.com/vigilsec/promptwall/pkg/rule"
	"github.com/vigilsec/promptwall/pkg/scanner"
	"github.com/vigilsec/promptwall/pkg/types"
	"github.com/vigilsec/promptwall/rules"
	"gopkg.in/yaml.v3"
)

// exitCode carries band-derived exit codes (0/2/3) out of command handlers
// that completed without an operational error.
var exitCode int

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	rulesDir        string
	rulesDirSet     bool
	cfgFile         string
	providersConfig string
	maxInputBytes   int64
	debug           bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "promptwall",
		Short: "Prompt-injection firewall CLI",
		Long: `Promptwall inspects untrusted natural-language text destined for an LLM
backend and produces a structured risk report: a numeric score, a risk band
(low/medium/high), per-rule findings with spans and excerpts, and optionally
an advisory verdict from a remote LLM.

Exit codes from scan map to bands (0 low, 2 medium, 3 high) so the tool can
gate CI pipelines; 1 signals an operational error.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; system environment always applies.
			_ = godotenv.Load()

			opts.rulesDirSet = cmd.Flags().Changed("rules-dir")

			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&opts.rulesDir, "rules-dir", "./rules", "Directory containing keywords.txt and patterns.json")
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file (risk tuning, llm defaults)")
	root.PersistentFlags().StringVar(&opts.providersConfig, "providers-config", "", "YAML file listing LLM provider profiles")
	root.PersistentFlags().Int64Var(&opts.maxInputBytes, "max-input-bytes", 1<<20, "Maximum input size accepted for scanning")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newListRulesCmd(opts))
	root.AddCommand(newHealthCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// cliConfig is the optional --config file.
type cliConfig struct {
	Risk *types.RiskConfig `yaml:"risk"`
	LLM  *llm.Settings     `yaml:"llm"`
}

func (o *rootOptions) loadCLIConfig() (*cliConfig, error) {
	if o.cfgFile == "" {
		return &cliConfig{}, nil
	}
	data, err := os.ReadFile(o.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg cliConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", o.cfgFile, err)
	}
	return &cfg, nil
}

// newRepository picks the rule source: an explicit --rules-dir always wins;
// the default ./rules is used when present, otherwise the embedded pack.
func (o *rootOptions) newRepository() rule.Repository {
	if o.rulesDirSet {
		return rule.NewFileRepository(o.rulesDir)
	}
	if info, err := os.Stat(o.rulesDir); err == nil && info.IsDir() {
		return rule.NewFileRepository(o.rulesDir)
	}
	slog.Debug("rules directory not found, using embedded pack", "dir", o.rulesDir)
	return rule.NewFSRepository(rules.FS())
}

// newEngine builds the scan engine from the selected repository and the
// optional risk tuning in --config.
func (o *rootOptions) newEngine() (*scanner.Engine, error) {
	cfg, err := o.loadCLIConfig()
	if err != nil {
		return nil, err
	}
	risk := types.DefaultRiskConfig()
	if cfg.Risk != nil {
		risk = *cfg.Risk
	}
	return scanner.NewWithConfig(o.newRepository(), risk), nil
}
