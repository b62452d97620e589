// Package config loads, normalizes, and validates livestage configuration.
//
// Configuration comes from a TOML file (~/.config/livestage/config.toml or
// ./livestage.toml by default) merged over built-in defaults; command-line
// flags are applied on top by the CLI. The loaded Config value is immutable
// by convention: components receive it at construction and never write to it.
package config
