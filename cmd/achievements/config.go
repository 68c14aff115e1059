package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metalagman/achievements/internal/config"
)

var defaultConfigPath = filepath.Join(".achievements", "config.yaml")

var defaultConfigYAML = mustYAML(config.Default())

func mustYAML(cfg config.Config) string {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		panic(fmt.Sprintf("marshal default config: %v", err))
	}
	return string(data)
}

// resolveConfigPath makes path absolute against repoRoot. When the file is
// missing, a sibling with another supported extension is used instead.
func resolveConfigPath(repoRoot, path string) string {
	if path == "" {
		path = defaultConfigPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	if fileExists(path) {
		return path
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if candidate := base + ext; fileExists(candidate) {
			return candidate
		}
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func loadConfig(repoRoot string) (config.Config, error) {
	v := viper.GetViper()
	bindEnv(v)
	path := resolveConfigPath(repoRoot, v.GetString("config"))
	if fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	if !filepath.IsAbs(cfg.Storage.Path) {
		cfg.Storage.Path = filepath.Join(repoRoot, cfg.Storage.Path)
	}
	return cfg, nil
}
