// Package web embeds the static assets served under /static/.
package web

import "embed"

// StaticFS holds the web/static directory tree.
//
//go:embed all:static
var StaticFS embed.FS
