// Package config loads quicklinks settings from a TOML file.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/quicklinks/config.toml
//  3. If the file doesn't exist, use defaults
//  4. Empty or missing fields take their defaults
//
// # TOML Format
//
//	endpoint = "https://script.google.com/macros/s/.../exec"
//	key_env = "QUICKLINKS_KEY"
//	broker = "127.0.0.1:7488"        # optional; fetch through a broker
//	store_path = "~/.local/share/quicklinks/quicklinks.db"
//	legacy_path = "~/.local/share/quicklinks/state.json"
//	log_path = "~/.local/state/quicklinks/quicklinks.log"
//	log_level = "info"
//	log_format = "text"
//	sync_interval = "24h"
//	request_timeout = "0s"           # zero means no timeout
//	tracing = "none"                 # none, stdout or otlp
//	otlp_endpoint = "localhost:4318"
//
// Tilde expansion is applied to every path.
//
// # Shared Secret
//
// The endpoint key is resolved in this order:
//
//  1. key in the config file
//  2. the environment variable named by key_env (.env files are loaded first)
//  3. the OS keyring, service keyring_service, account "shared-key"
//
// A missing key is not an error; it is simply left off the request URL.
package config
