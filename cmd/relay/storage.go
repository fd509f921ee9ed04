package main

import (
	"fmt"
	"os"

	"github.com/sagarc03/relay"
	"github.com/sagarc03/relay/config"
	"github.com/sagarc03/relay/filesystem"
)

// openService opens the storage directory and builds the relay service on
// top of it. With create set, a missing directory is created. The caller
// must close the returned root.
func openService(cfg *config.Config, create bool) (*relay.RelayService, *os.Root, error) {
	if create {
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
	} else if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	service, err := relay.NewRelayService(
		filesystem.NewFileStorage(root),
		relay.NewSigner(cfg.Auth.Secret),
		relay.ServiceConfig{},
	)
	if err != nil {
		_ = root.Close()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, root, nil
}
