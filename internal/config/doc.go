// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for egghead-tui.
//
// Configuration lives in a single TOML file with sensible defaults and
// environment variable overrides:
//   - ~/.egghead/config.toml
//   - Built-in defaults
//
// Environment variables (EGGHEAD_*) take precedence over the file.
package config
