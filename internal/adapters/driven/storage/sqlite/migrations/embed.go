// Package migrations carries the SQLite schema as versioned .up.sql
// files, compiled into the binary so there is nothing to ship alongside.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
