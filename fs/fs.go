// Package appfs exposes embedded application assets (SQL migrations).
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
