// Package config holds the runtime configuration for webmirror.
// It defines defaults, CLI-populated settings, per-site overrides loaded
// from the .webmirror YAML file, and XDG directory helpers.
package config
