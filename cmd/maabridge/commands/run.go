package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/logging"
	"github.com/foxwhite25/maabridge/internal/plan"
)

var runFormat string

var runCmd = &cobra.Command{
	Use:   "run [plan]",
	Short: "Run a task plan once",
	Long: `Connect to the device, queue every task of the plan, run them and wait
until the engine reports all tasks completed.

Examples:
  maabridge run daily.yaml
  maabridge run --address emulator-5554 --format json farm.yaml
  MAA_PLAN=daily.yaml maabridge run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	addConnectFlags(runCmd)
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Event output format (text|json)")
}

// addConnectFlags registers the flags that override device settings.
func addConnectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagResources, "resources", "", "Engine resource directory")
	cmd.Flags().StringVarP(&flagAddress, "address", "a", "", "Device address or serial")
	cmd.Flags().StringVar(&flagAdbPath, "adb", "", "Path to the adb executable")
	cmd.Flags().StringVar(&flagAdbConfig, "adb-config", "", "Engine adb profile (General, CompatMac, ...)")
	cmd.Flags().StringVar(&flagTouchMode, "touch-mode", "", "Input method (minitouch|maatouch|adb)")
}

func planPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if appConfig != nil && appConfig.Plan != "" {
		return appConfig.Plan, nil
	}
	return "", errors.New("no plan given and none configured")
}

func runPlan(cmd *cobra.Command, args []string) error {
	path, err := planPath(args)
	if err != nil {
		return err
	}
	p, err := plan.Load(afero.NewOsFs(), path)
	if err != nil {
		return err
	}
	if runFormat != "text" && runFormat != "json" {
		return fmt.Errorf("unknown format %q", runFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	defer bus.Close()

	streamCtx, closeStream := context.WithCancel(context.Background())
	msgs, err := bus.Stream(streamCtx)
	if err != nil {
		closeStream()
		return err
	}
	reported := make(chan struct{})
	go func() {
		defer close(reported)
		(&reporter{out: cmd.OutOrStdout(), json: runFormat == "json"}).run(msgs)
	}()
	defer func() {
		closeStream()
		<-reported
	}()

	conn, err := connect(ctx, bus)
	if err != nil {
		return err
	}
	defer conn.Destroy()

	log := logging.Component("run")
	for _, t := range p.Tasks {
		sub, err := conn.Append(t)
		if err != nil {
			return err
		}
		log.Debug().Stringer("task", sub).Msg("queued")
	}

	if err := conn.Start(); err != nil {
		return fmt.Errorf("starting tasks: %w", err)
	}
	log.Info().Int("tasks", len(p.Tasks)).Str("plan", path).Msg("running")

	if err := conn.WaitIdle(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("interrupted, stopping tasks")
			if stopErr := conn.Stop(); stopErr != nil {
				log.Error().Err(stopErr).Msg("stop failed")
			}
			return nil
		}
		return err
	}
	return nil
}
