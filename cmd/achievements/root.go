package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metalagman/achievements/internal/config"
	"github.com/metalagman/achievements/internal/logging"
)

const envPrefix = "ACHIEVEMENTS"

var (
	cfgFile   string
	debug     bool
	logFormat string
	rootCmd   = &cobra.Command{
		Use:           "achievements",
		Short:         "achievements tracks goals and requirements from game telemetry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log output format (console or json)")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return logging.Init(debug, logFormat)
	}
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(replaceCmd())
	rootCmd.AddCommand(clickCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(removeCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(completionsCmd())
	return rootCmd.Execute()
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()
	bindEnv(viper.GetViper())
}

// bindEnv maps ACHIEVEMENTS_<SECTION>_<KEY> variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
