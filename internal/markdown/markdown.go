// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns stored chapter bodies into HTML for the public
// pages. Chapters are authored by the admin only, so raw HTML inside
// Markdown is passed through unchanged.
package markdown

import (
	"bytes"
	"html/template"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"chapterpress/internal/models"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ChapterHTML returns the body of a chapter ready to be placed in a page.
// HTML bodies are returned as stored; Markdown bodies are converted first.
func ChapterHTML(format models.ContentFormat, content string) (template.HTML, error) {
	if format != models.FormatMarkdown {
		return template.HTML(content), nil
	}
	out, err := ToHTML(content)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}
