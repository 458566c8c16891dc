// Package migrations embeds the server's SQL schema migrations so goose can
// run them without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
