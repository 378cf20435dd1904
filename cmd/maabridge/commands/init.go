package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/bridge"
	"github.com/foxwhite25/maabridge/internal/config"
)

var initGlobal bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the device settings to a configuration file",
	Long: `Merge the connection flags over the loaded configuration and save the
result, so later runs need no flags. The file is written to
.maabridge/maabridge.json in the working directory, or to the user
configuration directory with --global.

Examples:
  maabridge init --resources ~/MAA --address 127.0.0.1:5555
  maabridge init --global --touch-mode maatouch`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	addConnectFlags(initCmd)
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Write the user configuration instead of the project one")
}

// initPath returns where init writes the configuration.
func initPath() (string, error) {
	if initGlobal {
		return config.GlobalConfigPath(), nil
	}
	dir, err := GetWorkDir(workingDir)
	if err != nil {
		return "", err
	}
	return config.ProjectConfigPath(dir), nil
}

func runInit(cmd *cobra.Command, args []string) error {
	merged := mergeFlags(appConfig)
	if merged.Options.TouchMode != "" {
		if _, err := bridge.ParseTouchMode(merged.Options.TouchMode); err != nil {
			return err
		}
	}

	path, err := initPath()
	if err != nil {
		return err
	}
	if err := config.Save(&merged, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	if err := merged.Validate(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "note: %v\n", err)
	}
	return nil
}
