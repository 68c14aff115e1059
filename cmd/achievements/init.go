package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/achievements/internal/db"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize achievement tracking in the current directory",
		Long:  "Initialize achievement tracking by creating the .achievements directory, installing a default config and creating the database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := writeDefaultConfig(repoRoot); err != nil {
				return err
			}
			cfg, err := loadConfig(repoRoot)
			if err != nil {
				return err
			}
			log.Info().Str("path", cfg.Storage.Path).Msg("creating database")
			storeDB, err := db.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			_ = storeDB.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "achievements initialized successfully")
			return nil
		},
	}
}

func writeDefaultConfig(repoRoot string) error {
	configPath := filepath.Join(repoRoot, defaultConfigPath)
	if _, err := os.Stat(configPath); err == nil {
		log.Info().Msg("config.yaml already exists, skipping")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	log.Info().Str("path", configPath).Msg("installing default config")
	if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
