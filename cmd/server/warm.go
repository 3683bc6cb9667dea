package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fill the local cache from the content repository and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Source.Validate(); err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to gracefully close application")
			}
		}()

		return a.service.Warm(cmd.Context())
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete every cached entity and image",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to gracefully close application")
			}
		}()

		if err := a.service.ClearAll(cmd.Context()); err != nil {
			return err
		}
		log.Info().Msg("Cache cleared")
		return nil
	},
}
