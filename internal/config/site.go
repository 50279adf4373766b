package config

// SiteConfig holds per-host overrides for mirroring behavior.
type SiteConfig struct {
	// Tags overrides the set of HTML tags whose references are rewritten
	// and downloaded. Empty means the global tag set.
	Tags []string `yaml:"tags,omitempty"`

	// AssetConcurrency overrides the per-page asset download pool size.
	// Zero means the global setting.
	AssetConcurrency int `yaml:"assetConcurrency,omitempty"`
}

// File represents the structure of the .webmirror configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to all hosts unless
	// overridden by a site-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if len(siteConfig.Tags) > 0 {
			result.Tags = siteConfig.Tags
		}
		if siteConfig.AssetConcurrency > 0 {
			result.AssetConcurrency = siteConfig.AssetConcurrency
		}
	}

	return result
}
