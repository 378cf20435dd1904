package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG at a temp dir and clears the bridge's env vars.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	for _, key := range []string{
		"MAABRIDGE_CONFIG", "MAABRIDGE_CONFIG_CONTENT",
		"MAA_RESOURCES", "MAA_INCREMENTAL", "MAA_WORK_DIR", "MAA_ADDRESS",
		"MAA_ADB_PATH", "MAA_ADB_CONFIG", "MAA_TOUCH_MODE", "MAA_LOG_LEVEL",
		"MAA_PLAN", "MAA_SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadProjectConfig(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "maabridge.jsonc"), `{
		// device under test
		"resources": "./MAA",
		"device": {"address": "127.0.0.1:16384", "adb_config": "CompatMac"},
		"options": {"touch_mode": "maatouch", "kill_adb_on_exit": true},
		"server": {"port": 4096},
	}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "MAA"), cfg.Resources)
	assert.Equal(t, "127.0.0.1:16384", cfg.Device.Address)
	assert.Equal(t, "CompatMac", cfg.Device.AdbConfig)
	assert.Equal(t, "maatouch", cfg.Options.TouchMode)
	assert.True(t, Bool(cfg.Options.KillAdbOnExit))
	assert.Nil(t, cfg.Options.AdbLiteEnabled)
	assert.Equal(t, 4096, cfg.Server.Port)
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, ".config", "maabridge", "maabridge.json"),
		`{"resources": "/global/MAA", "device": {"address": "global:5555"}, "options": {"adb_lite_enabled": true}}`)
	writeFile(t, filepath.Join(tmpDir, "maabridge.json"),
		`{"device": {"address": "project:5555"}}`)
	writeFile(t, filepath.Join(tmpDir, ".maabridge", "maabridge.json"),
		`{"options": {"adb_lite_enabled": false}}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/global/MAA", cfg.Resources)
	assert.Equal(t, "project:5555", cfg.Device.Address)
	require.NotNil(t, cfg.Options.AdbLiteEnabled)
	assert.False(t, *cfg.Options.AdbLiteEnabled)
}

func TestLoadEnvironment(t *testing.T) {
	tmpDir := isolate(t)

	explicit := filepath.Join(tmpDir, "elsewhere", "bridge.json")
	writeFile(t, explicit, `{"resources": "res", "log": {"level": "debug"}}`)
	t.Setenv("MAABRIDGE_CONFIG", explicit)
	t.Setenv("MAABRIDGE_CONFIG_CONTENT", `{"device": {"adb_path": "/opt/adb"}}`)
	t.Setenv("MAA_ADDRESS", "emulator-5554")
	t.Setenv("MAA_LOG_LEVEL", "warn")
	t.Setenv("MAA_SERVER_PORT", "8080")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "elsewhere", "res"), cfg.Resources)
	assert.Equal(t, "/opt/adb", cfg.Device.AdbPath)
	assert.Equal(t, "emulator-5554", cfg.Device.Address)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadInterpolation(t *testing.T) {
	tmpDir := isolate(t)

	t.Setenv("TEST_SERIAL", `dev"ice`)
	writeFile(t, filepath.Join(tmpDir, "adb.cfg"), "LDPlayer\n")
	writeFile(t, filepath.Join(tmpDir, "maabridge.json"), `{
		"device": {"address": "{env:TEST_SERIAL}", "adb_config": "{file:adb.cfg}"}
	}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, `dev"ice`, cfg.Device.Address)
	assert.Equal(t, "LDPlayer", cfg.Device.AdbConfig)
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := isolate(t)
	writeFile(t, filepath.Join(tmpDir, "maabridge.json"), `{"resources": `)

	_, err := Load(tmpDir)
	assert.Error(t, err)
}

func TestLoadNothing(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Resources)
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var incomplete *IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"resources", "device.address"}, incomplete.Missing)

	cfg := &Config{Resources: "/maa", Device: DeviceConfig{Address: "127.0.0.1:5555"}}
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := isolate(t)
	on := true

	cfg := &Config{
		Resources: "/maa",
		Device:    DeviceConfig{Address: "127.0.0.1:5555"},
		Options:   OptionsConfig{DeploymentWithPause: &on},
	}
	path := ProjectConfigPath(tmpDir)
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/maa", loaded.Resources)
	assert.True(t, Bool(loaded.Options.DeploymentWithPause))
}

func TestGetPaths(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))

	paths := GetPaths()
	assert.Equal(t, filepath.Join(tmpDir, ".config", "maabridge"), paths.Config)
	assert.Equal(t, filepath.Join(tmpDir, "state", "maabridge", "engine"), paths.WorkDir())

	require.NoError(t, paths.EnsurePaths())
	assert.DirExists(t, paths.State)
}
