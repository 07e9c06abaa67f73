package rule

import "embed"

// builtinFS embeds the builtin signature catalog.
//
//go:embed rules/*.yml
var builtinFS embed.FS
