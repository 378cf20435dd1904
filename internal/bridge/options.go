package bridge

import (
	"fmt"
	"strings"

	"github.com/foxwhite25/maabridge/internal/engine"
)

// TouchMode selects how the engine sends input to the device.
type TouchMode string

const (
	TouchMinitouch TouchMode = "minitouch"
	TouchMaaTouch  TouchMode = "maatouch"
	TouchAdb       TouchMode = "adb"
)

// ParseTouchMode accepts the engine names case-insensitively.
func ParseTouchMode(s string) (TouchMode, error) {
	switch mode := TouchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case TouchMinitouch, TouchMaaTouch, TouchAdb:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown touch mode %q", s)
	}
}

// Options are the instance options applied right after the handle is created.
type Options struct {
	TouchMode           TouchMode
	DeploymentWithPause bool
	AdbLiteEnabled      bool
	KillAdbOnExit       bool
}

// DefaultOptions uses minitouch and leaves everything else off.
func DefaultOptions() Options {
	return Options{TouchMode: TouchMinitouch}
}

type optionValue struct {
	key   engine.OptionKey
	value string
}

// values returns the options in ascending key order, encoded for the engine.
func (o Options) values() []optionValue {
	mode := o.TouchMode
	if mode == "" {
		mode = TouchMinitouch
	}
	return []optionValue{
		{engine.OptionTouchMode, string(mode)},
		{engine.OptionDeploymentWithPause, flag(o.DeploymentWithPause)},
		{engine.OptionAdbLiteEnabled, flag(o.AdbLiteEnabled)},
		{engine.OptionKillAdbOnExit, flag(o.KillAdbOnExit)},
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
