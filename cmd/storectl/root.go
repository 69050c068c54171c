package main

import (
	"fmt"

	"homefoods-be/internal/config"
	"homefoods-be/internal/db"
	"homefoods-be/internal/store"

	"github.com/spf13/cobra"
)

var (
	loadConfigFunc = config.LoadStoreConfig
	openStoreFunc  = openStore
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Maintenance tasks for the homefoods store",
		Long:          "storectl seeds the catalog, moderates reviews and hashes admin secrets without going through the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVerifyReviewCmd())
	cmd.AddCommand(newHashSecretCmd())
	return cmd
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return store.NewMemory(), nil
	}
	database, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store.NewPostgres(database), nil
}

// withStore loads the store config and hands an open store to fn.
func withStore(fn func(st store.Store) error) error {
	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStoreFunc(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
