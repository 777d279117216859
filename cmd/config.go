// cmd/config.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/francois-cf/guidefacile/internal/config"
)

type effectiveConfig struct {
	config.Config    `yaml:",inline"`
	ResolvedSiteRoot string `yaml:"resolvedSiteRoot"`
}

// configCmd prints the configuration a build would use.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := renderConfig(appConfig)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func renderConfig(cfg config.Config) (string, error) {
	data, err := yaml.Marshal(effectiveConfig{
		Config:           cfg,
		ResolvedSiteRoot: cfg.ResolvedSiteRoot(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(configCmd)
}
