package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/simulation"
	"github.com/picogrid/legion-battalions/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/legion-battalions/cmd/skirmish"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long:  `Run a simulation interactively or with specified parameters`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().String("scenario", "", "scenario file passed to the simulation as its config")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	info, err := selectSimulation(cmd, simInfos)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(info.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	params, err := resolveParameters(cmd, info.Config)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("Received interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("%s Starting %s", logger.IconRocket, sim.Name()))
	if err := sim.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Simulation interrupted")
			return nil
		}
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

func selectSimulation(cmd *cobra.Command, simInfos []utils.SimulationInfo) (utils.SimulationInfo, error) {
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		info, ok := utils.FindSimulation(simInfos, simName)
		if !ok {
			return utils.SimulationInfo{}, fmt.Errorf("%w: %s", simulation.ErrNotFound, simName)
		}
		return info, nil
	}

	if !interactive() && len(simInfos) > 1 {
		return utils.SimulationInfo{}, errors.New("several simulations found, choose one with --simulation")
	}
	return utils.SelectSimulation(simInfos)
}

// resolveParameters takes parameters from a params file, the prompts or the
// environment, then adds the global templates and the scenario file
func resolveParameters(cmd *cobra.Command, cfg simulation.SimulationConfig) (map[string]interface{}, error) {
	var (
		params map[string]interface{}
		err    error
	)

	paramsFile, _ := cmd.Flags().GetString("params")
	switch {
	case paramsFile != "":
		params, err = loadParamsFile(paramsFile, cfg.Parameters)
	case interactive():
		params, err = utils.PromptForParameters(cfg.Parameters)
	default:
		params, err = utils.ParametersFromEnv(cfg.Parameters)
	}
	if err != nil {
		return nil, err
	}

	if templatesPath := viper.GetString("templates"); templatesPath != "" {
		params["templates"] = templatesPath
	}
	if scenario, _ := cmd.Flags().GetString("scenario"); scenario != "" {
		params["config"] = scenario
	}
	return params, nil
}

// loadParamsFile reads a YAML map of parameter values. Declared parameters
// are converted to their type; missing ones fall back to their defaults.
func loadParamsFile(path string, declared []simulation.Parameter) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading params file: %w", err)
	}

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing params file: %w", err)
	}

	params := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		params[k] = v
	}
	for _, p := range declared {
		v, ok := raw[p.Name]
		if !ok {
			if p.Default != nil {
				params[p.Name] = p.Default
			}
			continue
		}
		parsed, err := p.Parse(fmt.Sprint(v))
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params[p.Name] = parsed
	}
	return params, nil
}
