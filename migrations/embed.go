package migrations

import "embed"

// FS holds the cache schema migrations, one subdirectory per backend.
//
//go:embed sqlite/*.sql
var FS embed.FS
