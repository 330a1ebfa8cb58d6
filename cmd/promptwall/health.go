package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vigilsec/promptwall/pkg/llm"
)

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe configured LLM providers",
		Long: `Check that every provider listed in --providers-config (or, without one,
the provider configured in the environment) can be constructed. Exits 1 if
any probe fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := healthProfiles(root)
			if err != nil {
				return err
			}

			ok := color.New(color.FgGreen).Sprint("ok")
			failed := color.New(color.FgRed).Sprint("FAILED")

			failures := 0
			for _, profile := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "Checking provider %s ... ", profile.Name)
				if err := profile.Probe(cmd.Context()); err != nil {
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", failed, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d provider(s) failed the health check", failures, len(profiles))
			}
			return nil
		},
	}
}

func healthProfiles(root *rootOptions) ([]llm.ProviderProfile, error) {
	if root.providersConfig != "" {
		cfg, err := llm.LoadProvidersConfig(root.providersConfig)
		if err != nil {
			return nil, err
		}
		return cfg.Providers, nil
	}

	settings := llm.EnvSettings()
	return []llm.ProviderProfile{{
		Name:        settings.Provider,
		Model:       settings.Model,
		Endpoint:    settings.Endpoint,
		APIVersion:  settings.APIVersion,
		TimeoutSecs: settings.TimeoutSecs,
		MaxRetries:  settings.MaxRetries,
	}}, nil
}
