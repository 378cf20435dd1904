package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// File names searched in every config directory.
var configNames = []string{"maabridge.json", "maabridge.jsonc"}

// ErrIncomplete is returned by Validate when a required setting is missing.
var ErrIncomplete = errors.New("incomplete configuration")

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/maabridge/)
// 2. Project config (<directory>/ and <directory>/.maabridge/)
// 3. MAABRIDGE_CONFIG file
// 4. MAABRIDGE_CONFIG_CONTENT inline JSON
// 5. Environment variables
func Load(directory string) (*Config, error) {
	config := &Config{}

	loaded := make(map[string]bool)

	loadOnce := func(path string, baseDir string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if loaded[absPath] {
			return nil
		}
		err = loadConfigFile(path, config, baseDir)
		if err == nil {
			loaded[absPath] = true
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	dirs := []string{GetPaths().Config}
	if directory != "" {
		dirs = append(dirs, directory, filepath.Join(directory, ".maabridge"))
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			if err := loadOnce(filepath.Join(dir, name), dir); err != nil {
				return nil, err
			}
		}
	}

	if configPath := os.Getenv("MAABRIDGE_CONFIG"); configPath != "" {
		if err := loadConfigFile(configPath, config, filepath.Dir(configPath)); err != nil {
			return nil, err
		}
	}

	if content := os.Getenv("MAABRIDGE_CONFIG_CONTENT"); content != "" {
		var inline Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(content)), &inline); err != nil {
			return nil, err
		}
		mergeConfig(config, &inline)
	}

	applyEnvOverrides(config)

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = jsonc.ToJSON(data)
	data = interpolate(data, baseDir)

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	resolvePaths(&fileConfig, baseDir)
	mergeConfig(config, &fileConfig)
	return nil
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		return jsonEscape(os.Getenv(envPattern.FindStringSubmatch(match)[1]))
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		content, err := os.ReadFile(expandPath(filePattern.FindStringSubmatch(match)[1], baseDir))
		if err != nil {
			return match
		}
		return jsonEscape(strings.TrimRight(string(content), "\r\n"))
	})

	return []byte(str)
}

func jsonEscape(s string) string {
	quoted := strconv.Quote(s)
	return quoted[1 : len(quoted)-1]
}

// expandPath resolves ~/ and paths relative to baseDir.
func expandPath(path, baseDir string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(os.Getenv("HOME"), path[2:])
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(baseDir, path)
	}
}

// resolvePaths makes file system paths in a config file relative to that file.
func resolvePaths(c *Config, baseDir string) {
	c.Resources = expandPath(c.Resources, baseDir)
	c.Incremental = expandPath(c.Incremental, baseDir)
	c.WorkDir = expandPath(c.WorkDir, baseDir)
	c.Plan = expandPath(c.Plan, baseDir)
	if strings.ContainsRune(c.Device.AdbPath, filepath.Separator) {
		c.Device.AdbPath = expandPath(c.Device.AdbPath, baseDir)
	}
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *Config) {
	setString(&target.Schema, source.Schema)
	setString(&target.Resources, source.Resources)
	setString(&target.Incremental, source.Incremental)
	setString(&target.WorkDir, source.WorkDir)
	setString(&target.Plan, source.Plan)

	setString(&target.Device.Address, source.Device.Address)
	setString(&target.Device.AdbPath, source.Device.AdbPath)
	setString(&target.Device.AdbConfig, source.Device.AdbConfig)

	setString(&target.Options.TouchMode, source.Options.TouchMode)
	setBool(&target.Options.DeploymentWithPause, source.Options.DeploymentWithPause)
	setBool(&target.Options.AdbLiteEnabled, source.Options.AdbLiteEnabled)
	setBool(&target.Options.KillAdbOnExit, source.Options.KillAdbOnExit)

	setString(&target.Log.Level, source.Log.Level)
	setBool(&target.Log.Pretty, source.Log.Pretty)
	setBool(&target.Log.File, source.Log.File)

	setString(&target.Server.Hostname, source.Server.Hostname)
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	setBool(&target.Server.CORS, source.Server.CORS)
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func setBool(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *Config) {
	vars := map[string]*string{
		"MAA_RESOURCES":   &config.Resources,
		"MAA_INCREMENTAL": &config.Incremental,
		"MAA_WORK_DIR":    &config.WorkDir,
		"MAA_ADDRESS":     &config.Device.Address,
		"MAA_ADB_PATH":    &config.Device.AdbPath,
		"MAA_ADB_CONFIG":  &config.Device.AdbConfig,
		"MAA_TOUCH_MODE":  &config.Options.TouchMode,
		"MAA_LOG_LEVEL":   &config.Log.Level,
		"MAA_PLAN":        &config.Plan,
	}
	for env, dst := range vars {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if port := os.Getenv("MAA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}

// Validate checks that the settings needed to connect are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Resources == "" {
		missing = append(missing, "resources")
	}
	if c.Device.Address == "" {
		missing = append(missing, "device.address")
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// IncompleteError lists missing required settings.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "incomplete configuration: missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// Save saves the configuration to a file.
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
