// Package views embeds the HTML templates so the binary serves them without
// a views directory on disk.
package views

import "embed"

// FS holds every template, keyed by path relative to this directory.
//
//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS
