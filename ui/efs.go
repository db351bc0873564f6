// Package ui holds the templates and static assets of the web interface.
package ui

import (
	"embed"
)

//go:embed templates static
var Files embed.FS
