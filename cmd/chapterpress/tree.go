package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	var drafts, asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category, series and chapter hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, h, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close(cmd.Context())

			ac := auth.Anonymous
			if drafts {
				ac = auth.Context{Authenticated: true, Role: auth.RoleAdmin, Username: "cli"}
			}
			tree, err := content.NewService(repositories(h)).Tree(cmd.Context(), ac)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, tree)
			}
			return printTree(cmd, tree)
		},
	}

	cmd.Flags().BoolVar(&drafts, "drafts", false, "Include unpublished chapters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

var treeHeaders = []string{"Category", "Series", "#", "Chapter", "Slug", "Status"}

func printTree(cmd *cobra.Command, tree []models.CategoryNode) error {
	if len(tree) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No categories yet.")
		return nil
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(treeHeaders, treeRows(tree), aligns))
	return nil
}

// treeRows flattens the hierarchy to one row per chapter. Categories and
// series without children still get a row so they stay visible.
func treeRows(tree []models.CategoryNode) [][]string {
	var rows [][]string
	for _, cat := range tree {
		if len(cat.Series) == 0 {
			rows = append(rows, []string{cat.Name, "", "", "", "", ""})
			continue
		}
		for _, sr := range cat.Series {
			if len(sr.Chapters) == 0 {
				rows = append(rows, []string{cat.Name, sr.Name, "", "", "", ""})
				continue
			}
			for _, ch := range sr.Chapters {
				status := "published"
				if !ch.Published {
					status = "draft"
				}
				rows = append(rows, []string{cat.Name, sr.Name, strconv.Itoa(ch.Order), ch.Title, ch.Slug, status})
			}
		}
	}
	return rows
}
