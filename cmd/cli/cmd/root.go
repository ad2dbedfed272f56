package cmd

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "battalion-sim",
	Short: "Battalion simulation CLI",
	Long: `Battalion Simulation CLI runs simulations of battalions: leader
entities that raise member units, bind them into formations and fight
as one body.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.battalion-sim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("templates", "", "entity templates file (default is the built-in set)")

	for _, name := range []string{"log-level", "no-color", "templates"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/.battalion-sim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// BATTALION_LOG_LEVEL, BATTALION_NO_COLOR, BATTALION_TEMPLATES
	viper.SetEnvPrefix(strings.TrimSuffix(utils.EnvPrefix, "_"))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}

	noColor := viper.GetBool("no-color") || !term.IsTerminal(int(os.Stdout.Fd()))
	logger.SetNoColor(noColor)
	color.NoColor = noColor
	logger.SetLevel(logger.ParseLevel(viper.GetString("log-level")))
}

// interactive reports whether prompts can be shown
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && !utils.PromptsDisabled()
}
