package main

import (
	"fmt"

	"homefoods-be/internal/review"
	"homefoods-be/internal/store"

	"github.com/spf13/cobra"
)

func newVerifyReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-review <id>",
		Short: "Publish a customer review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st store.Store) error {
				svc, err := review.NewService(review.ServiceDeps{Repo: review.NewRepository(st)})
				if err != nil {
					return err
				}
				rv, err := svc.Verify(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("verify %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "review %s by %s is now public\n", rv.ID, rv.Name)
				return nil
			})
		},
	}
}
