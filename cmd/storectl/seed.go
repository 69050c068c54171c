package main

import (
	"fmt"
	"os"

	"homefoods-be/internal/product"
	"homefoods-be/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products []product.Product `yaml:"products"`
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the product catalog from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readCatalog(file)
			if err != nil {
				return err
			}
			return withStore(func(st store.Store) error {
				svc := product.NewService(product.NewRepository(st), nil)
				res, err := svc.Seed(cmd.Context(), products)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog seeded: %d created, %d updated\n", res.Created, res.Updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.sample.yaml", "YAML catalog to load")
	return cmd
}

func readCatalog(path string) ([]product.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c catalogFile
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(c.Products) == 0 {
		return nil, fmt.Errorf("catalog %s has no products", path)
	}
	return c.Products, nil
}
