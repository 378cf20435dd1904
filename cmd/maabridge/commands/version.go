package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bridge and engine versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "maabridge %s (%s)\n", Version, BuildTime)

		eng, err := engine.Open()
		switch {
		case errors.Is(err, engine.ErrUnavailable):
			fmt.Fprintln(out, "engine    not linked (build with -tags maacore)")
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "engine    %s\n", eng.Version())
		return nil
	},
}
