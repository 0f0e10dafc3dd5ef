// Package config defines the Config Document (§3) recognized by
// localsearch: per-project index policy loaded from
// "<project>/.localsearch/config.yml" with environment overrides.
package config

// Config is the complete project configuration document.
type Config struct {
	Include  []string `yaml:"include" mapstructure:"include"`
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`

	RespectGitignore bool `yaml:"respectGitignore" mapstructure:"respectGitignore"`

	MaxFileSize string `yaml:"maxFileSize" mapstructure:"maxFileSize"`
	MaxFiles    int    `yaml:"maxFiles" mapstructure:"maxFiles"`

	DocPatterns []string `yaml:"docPatterns" mapstructure:"docPatterns"`
	IndexDocs   bool     `yaml:"indexDocs" mapstructure:"indexDocs"`

	ChunkingStrategy string `yaml:"chunkingStrategy" mapstructure:"chunkingStrategy"`

	HybridSearch HybridSearchConfig `yaml:"hybridSearch" mapstructure:"hybridSearch"`

	EnhancedToolDescriptions bool `yaml:"enhancedToolDescriptions" mapstructure:"enhancedToolDescriptions"`

	// Unknown preserves any keys the typed struct above doesn't recognize,
	// so a forward-compat config file round-trips without data loss (§9).
	Unknown map[string]any `yaml:"-" mapstructure:"-"`
}

// HybridSearchConfig configures the fusion of vector and FTS results.
type HybridSearchConfig struct {
	FtsEngine    string  `yaml:"ftsEngine" mapstructure:"ftsEngine"` // "auto" | "js" | "native"
	DefaultAlpha float64 `yaml:"defaultAlpha" mapstructure:"defaultAlpha"`
}

// Default returns the configuration with spec-mandated defaults (§3).
func Default() *Config {
	return &Config{
		Include: []string{
			"**/*.go", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
			"**/*.py", "**/*.rs", "**/*.c", "**/*.cpp", "**/*.cc",
			"**/*.h", "**/*.hpp", "**/*.java", "**/*.rb", "**/*.php",
		},
		Exclude: []string{
			"node_modules/**", "vendor/**", ".git/**", "dist/**",
			"build/**", "target/**", "__pycache__/**", "*.min.js",
		},
		RespectGitignore: true,
		MaxFileSize:      "1MB",
		MaxFiles:         50_000,
		DocPatterns:      []string{"**/*.md", "**/*.txt"},
		IndexDocs:        true,
		ChunkingStrategy: "character",
		HybridSearch: HybridSearchConfig{
			FtsEngine:    "auto",
			DefaultAlpha: 0.5,
		},
		EnhancedToolDescriptions: false,
	}
}
