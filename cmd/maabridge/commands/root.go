// Package commands provides the CLI commands for maabridge.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/config"
	"github.com/foxwhite25/maabridge/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel   string
	logPretty  bool
	logToFile  bool
	workingDir string
	envFile    string
)

// appConfig is loaded before any subcommand runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "maabridge",
	Short: "Drive the MAA engine from the command line or over HTTP",
	Long: `maabridge connects to an Android device through the MAA engine, queues
tasks and reports what the engine does while running them.

Run 'maabridge run plan.yaml' to execute a task plan once, or
'maabridge serve' to keep a connection open behind an HTTP API.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (TRACE|DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "Human-readable console logs")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "Also write JSON logs to the state directory")
	rootCmd.PersistentFlags().StringVarP(&workingDir, "directory", "C", "", "Directory to search for maabridge.json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")

	rootCmd.SetVersionTemplate(fmt.Sprintf("maabridge %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the env file and configuration, then initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	dir, err := GetWorkDir(workingDir)
	if err != nil {
		return err
	}
	appConfig, err = config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return logging.Init(loggingConfig(appConfig))
}

// loggingConfig merges the log flags over the configuration file.
func loggingConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if level != "" {
		lc.Level = logging.ParseLevel(level)
	}
	lc.Pretty = logPretty || config.Bool(cfg.Log.Pretty)
	lc.LogToFile = logToFile || config.Bool(cfg.Log.File)
	lc.LogDir = config.GetPaths().LogDir()
	return lc
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
