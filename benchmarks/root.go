package benchmarks

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/graphenv/explorer"
)

var (
	episodes   int
	horizon    int
	saveFile   string
	runs       int
	logLevel   string
	configFile string
	// config is the loaded experiment file, nil if none was given
	config *Config
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "graphenv",
		Short:        "Run policies on graph search environments",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			config = nil
			if configFile != "" {
				cfg, err := LoadConfig(configFile)
				if err != nil {
					return err
				}
				config = cfg
				if err := cfg.Apply(cmd); err != nil {
					return err
				}
			}
			return startProfiling()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return stopProfiling()
		},
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 100, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML experiment file")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write a cpu profile to this file in the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(HallwayCommand())
	rootCommand.AddCommand(TSPCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(explorer.ExploreCommand())
	return rootCommand
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}
