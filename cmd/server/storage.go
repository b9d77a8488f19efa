package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/storage"
)

// InitStorage selects the backend media URLs are resolved against.
func InitStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.UseSpaces {
		spaces, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesCDNURL,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Spaces storage: %w", err)
		}
		log.Info().Str("cdn", cfg.SpacesCDNURL).Msg("using Spaces storage")
		return spaces, nil
	}

	log.Info().Str("dir", cfg.UploadDir).Msg("using local file storage")
	return storage.NewLocalStorage(cfg.UploadDir, "/uploads/"), nil
}
