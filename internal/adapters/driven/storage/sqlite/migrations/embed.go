// Package migrations embeds the SQL migration scripts applied at startup.
package migrations

import "embed"

// FS holds the migration scripts. Files are named NNN_description.up.sql
// and applied in ascending version order.
//
//go:embed *.sql
var FS embed.FS
