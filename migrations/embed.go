// Package migrations embeds the SQL migration files for the goose provider
// used by cmd/migrate and by the server when DATABASE_AUTO_MIGRATE is set.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
