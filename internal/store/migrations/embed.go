// Package migrations embeds the SQL schema migrations of the backend store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
