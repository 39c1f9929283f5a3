// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
)

// seeder is the identity seed writes are attributed to.
var seeder = auth.Context{Authenticated: true, Role: auth.RoleAdmin, Username: "seed"}

// Seed populates an empty store with a small sample hierarchy for
// development. It does nothing when any category already exists.
func Seed(ctx context.Context, svc *content.Service) error {
	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if stats.Categories > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	cat, err := svc.CreateCategory(ctx, seeder, content.CategoryInput{
		Name:        "IP Basics",
		Slug:        "ip-basics",
		Description: "Addresses, packets and how they find their way.",
	})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}

	series, err := svc.CreateSeries(ctx, seeder, content.SeriesInput{
		Name:        "Overview",
		Slug:        "overview",
		Description: "A first look at the Internet Protocol.",
		CategoryID:  cat.ID,
	})
	if err != nil {
		return fmt.Errorf("seed series: %w", err)
	}

	chapters := []content.ChapterInput{
		{
			Title:     "What is IP",
			Slug:      "what-is-ip",
			Content:   "<p>The Internet Protocol delivers packets from a source host to a destination host based on their addresses.</p>",
			Published: true,
		},
		{
			Title:   "IPv4 vs IPv6",
			Slug:    "ipv4-vs-ipv6",
			Format:  "markdown",
			Content: "## Address length\n\nIPv4 addresses are **32 bits**, IPv6 addresses are **128 bits**.\n",
			Order:   1,
		},
	}
	for _, in := range chapters {
		in.SeriesID = series.ID
		if _, err := svc.CreateChapter(ctx, seeder, in); err != nil {
			return fmt.Errorf("seed chapter %q: %w", in.Slug, err)
		}
	}

	slog.Info("database seeded with sample content", "category", cat.Slug, "series", series.Slug, "chapters", len(chapters))
	return nil
}
