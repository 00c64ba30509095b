// Package config loads runtime configuration for the notekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config.
//  3. Environment variables (NOTEKEEPER_CLI_*).
//  4. Command-line flags, applied by the cli package on top of Load's result.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "session_file": "/home/me/.notekeeper/session",
//	  "cookie_name": "session",
//	  "request_timeout": "15s"
//	}
package config
