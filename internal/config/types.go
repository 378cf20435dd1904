package config

// Config is the merged bridge configuration.
type Config struct {
	Schema string `json:"$schema,omitempty"`

	// Resources is the engine resource directory (the one holding resource/).
	Resources string `json:"resources,omitempty"`
	// Incremental is an optional overlay loaded after Resources.
	Incremental string `json:"incremental,omitempty"`
	// WorkDir is the engine user directory for its logs and caches.
	WorkDir string `json:"work_dir,omitempty"`

	Device  DeviceConfig  `json:"device"`
	Options OptionsConfig `json:"options"`
	Log     LogConfig     `json:"log"`
	Server  ServerConfig  `json:"server"`

	// Plan is the default task plan file for the run command.
	Plan string `json:"plan,omitempty"`
}

// DeviceConfig selects the device and how adb reaches it.
type DeviceConfig struct {
	Address   string `json:"address,omitempty"`
	AdbPath   string `json:"adb_path,omitempty"`
	AdbConfig string `json:"adb_config,omitempty"`
}

// OptionsConfig holds instance options. Nil fields keep the lower layer's value.
type OptionsConfig struct {
	TouchMode           string `json:"touch_mode,omitempty"`
	DeploymentWithPause *bool  `json:"deployment_with_pause,omitempty"`
	AdbLiteEnabled      *bool  `json:"adb_lite_enabled,omitempty"`
	KillAdbOnExit       *bool  `json:"kill_adb_on_exit,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Pretty *bool  `json:"pretty,omitempty"`
	File   *bool  `json:"file,omitempty"`
}

// ServerConfig configures the HTTP control server.
type ServerConfig struct {
	Hostname string `json:"hostname,omitempty"`
	Port     int    `json:"port,omitempty"`
	CORS     *bool  `json:"cors,omitempty"`
}

// Bool dereferences an optional flag.
func Bool(b *bool) bool {
	return b != nil && *b
}
