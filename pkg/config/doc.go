// Package config loads and validates the chores configuration.
//
// Values are layered: [Default], then an optional YAML file ([Load]), then
// CHORES_* environment variables ([Config.ApplyEnv]). Command line flags are
// applied last by the caller.
package config
