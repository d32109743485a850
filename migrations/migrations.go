// Package migrations embeds the postgres schema migrations so binaries do not
// depend on the working directory.
package migrations

import "embed"

// FS holds every *.sql migration of the ledger schema
//
//go:embed *.sql
var FS embed.FS
