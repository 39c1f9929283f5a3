package main

import (
	"github.com/spf13/cobra"

	"chapterpress/internal/content"
	"chapterpress/internal/database"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample hierarchy into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, h, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close(cmd.Context())
			return database.Seed(cmd.Context(), content.NewService(repositories(h)))
		},
	}
}
