package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads a project's Config from ".localsearch/config.yml" layered
// with "LOCALSEARCH_*" environment variable overrides (§3).
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	projectRoot string
}

// NewLoader creates a Loader rooted at the given project directory.
func NewLoader(projectRoot string) Loader {
	return &loader{projectRoot: projectRoot}
}

// Load reads the config file (if present), applies environment overrides,
// fills in defaults for anything unset, then validates the result.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.projectRoot, ".localsearch"))

	v.SetEnvPrefix("LOCALSEARCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"include", "exclude", "respectGitignore", "maxFileSize", "maxFiles",
		"docPatterns", "indexDocs", "chunkingStrategy",
		"hybridSearch.ftsEngine", "hybridSearch.defaultAlpha",
		"enhancedToolDescriptions",
	} {
		_ = v.BindEnv(key)
	}

	def := Default()
	setDefaults(v, def)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Unknown = unrecognizedKeys(v.AllSettings())

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("include", def.Include)
	v.SetDefault("exclude", def.Exclude)
	v.SetDefault("respectGitignore", def.RespectGitignore)
	v.SetDefault("maxFileSize", def.MaxFileSize)
	v.SetDefault("maxFiles", def.MaxFiles)
	v.SetDefault("docPatterns", def.DocPatterns)
	v.SetDefault("indexDocs", def.IndexDocs)
	v.SetDefault("chunkingStrategy", def.ChunkingStrategy)
	v.SetDefault("hybridSearch.ftsEngine", def.HybridSearch.FtsEngine)
	v.SetDefault("hybridSearch.defaultAlpha", def.HybridSearch.DefaultAlpha)
	v.SetDefault("enhancedToolDescriptions", def.EnhancedToolDescriptions)
}

var knownTopLevelKeys = map[string]bool{
	"include": true, "exclude": true, "respectgitignore": true,
	"maxfilesize": true, "maxfiles": true, "docpatterns": true,
	"indexdocs": true, "chunkingstrategy": true, "hybridsearch": true,
	"enhancedtooldescriptions": true,
}

func unrecognizedKeys(all map[string]any) map[string]any {
	extra := map[string]any{}
	for k, v := range all {
		if !knownTopLevelKeys[strings.ToLower(k)] {
			extra[k] = v
		}
	}
	return extra
}
