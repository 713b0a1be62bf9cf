// Package web holds the server-rendered page templates.
package web

import "embed"

// Templates contains base.html plus one file per page.
//
//go:embed templates/*.html
var Templates embed.FS
