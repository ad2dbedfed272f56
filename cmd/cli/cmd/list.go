package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/simulation"
	"github.com/picogrid/legion-battalions/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulations",
	Long:  `List all available simulations with their descriptions`,
	RunE:  listSimulations,
}

func listSimulations(cmd *cobra.Command, _ []string) error {
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	if len(simInfos) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No simulations found")
		return nil
	}

	registered := make(map[string]bool)
	for _, name := range simulation.DefaultRegistry.List() {
		registered[name] = true
	}

	table := logger.NewTable("NAME", "VERSION", "CATEGORY", "BUILT IN", "DESCRIPTION")
	for _, info := range simInfos {
		builtIn := "no"
		if registered[info.Config.Name] {
			builtIn = "yes"
		}
		table.AddRow(info.Config.Name, info.Config.Version, info.Config.Category, builtIn, info.Config.Description)
	}
	table.Fprint(cmd.OutOrStdout())
	return nil
}
