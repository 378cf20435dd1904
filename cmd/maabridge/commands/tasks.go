package commands

import (
	"encoding/json"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/plan"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [plan]",
	Short: "Print the engine parameters of every task in a plan",
	Long: `Parse the plan and print the task kinds and JSON parameters that run
would append, without touching the engine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: printTasks,
}

type taskParams struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

func printTasks(cmd *cobra.Command, args []string) error {
	path, err := planPath(args)
	if err != nil {
		return err
	}
	p, err := plan.Load(afero.NewOsFs(), path)
	if err != nil {
		return err
	}

	out := make([]taskParams, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		raw, err := t.MarshalJSON()
		if err != nil {
			return err
		}
		out = append(out, taskParams{Type: t.Name(), Params: raw})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
