// Package data provides the embedded dungeon blueprints.
package data

import "embed"

// blueprintFS embeds all blueprint files from the blueprints directory at build time.
//
//go:embed blueprints/*.yaml blueprints/*.json
var blueprintFS embed.FS

// FS returns the embedded filesystem containing the blueprints.
func FS() embed.FS {
	return blueprintFS
}
