// Package migrations embeds the SQL that creates the camfeed relations. The
// service never applies it on its own; it is used to bootstrap test and
// development databases.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
