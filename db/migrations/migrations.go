// Package migrations embeds the escrow schema. Files follow the
// golang-migrate naming scheme NNNNNN_name.{up,down}.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Version is the schema version the binary expects. Bump it together with
// every new migration pair.
const Version = 1
