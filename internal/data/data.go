// Package data embeds the SQL schema migrations.
package data

import "embed"

const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
