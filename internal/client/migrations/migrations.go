// Package migrations embeds the client schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
