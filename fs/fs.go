// Package appfs embeds the assets the binaries need at runtime:
// database migrations and email templates.
package appfs

import "embed"

// "all:" keeps the "_"-prefixed template partials, which plain directory
// patterns exclude.
//
//go:embed migrations all:templates
var FS embed.FS
