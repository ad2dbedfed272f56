package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/legion-battalions/cmd/skirmish/config"
	"github.com/picogrid/legion-battalions/pkg/logger"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Show or write the skirmish scenario",
	Long: `Show the skirmish scenario resolved from a scenario file, the default
locations and BATTALION_ environment overrides, or write it to a file`,
	RunE: showScenario,
}

func init() {
	scenarioCmd.Flags().StringP("file", "f", "", "scenario file to load")
	scenarioCmd.Flags().StringP("write", "w", "", "write the resolved scenario to this path")
}

func showScenario(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	cfg, err := config.LoadConfigOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	out, _ := cmd.Flags().GetString("write")
	if out != "" {
		if err := config.SaveConfig(cfg, out); err != nil {
			return fmt.Errorf("failed to write scenario: %w", err)
		}
		logger.Successf("Scenario written to %s", out)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
	return nil
}
