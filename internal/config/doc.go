// Package config handles configuration loading for the ava client.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. Fields left out of the file keep their defaults, and a
// missing file means pure defaults, so a zero-config first run works.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from the AVA_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/ava/config.yaml
//  3. ~/.config/ava/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  url: "${AVA_GATEWAY_URL}"
//
// # Duration Fields
//
// Timeouts and TTLs are written as Go duration strings ("30s", "5m") and
// parsed during load.
package config
