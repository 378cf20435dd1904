// Package config loads and merges bridge configuration.
//
// Sources are merged in increasing priority:
//
//  1. Global config in $XDG_CONFIG_HOME/maabridge/
//  2. Project config in the working directory and its .maabridge/ subdirectory
//  3. The file named by MAABRIDGE_CONFIG
//  4. Inline JSON in MAABRIDGE_CONFIG_CONTENT
//  5. MAA_* environment variables
//
// Each directory is searched for maabridge.json and maabridge.jsonc. Comments
// are stripped with tidwall/jsonc before decoding.
//
// # Interpolation
//
// String values may contain {env:NAME} and {file:path} placeholders. File
// paths are resolved relative to the config file that names them, as are the
// resources, incremental, work_dir and plan settings.
//
//	{
//	  "resources": "~/MAA",
//	  "device": {
//	    "address": "{env:ANDROID_SERIAL}",
//	    "adb_config": "General"
//	  },
//	  "options": {"touch_mode": "maatouch", "kill_adb_on_exit": true}
//	}
package config
