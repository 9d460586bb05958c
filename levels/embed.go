// Package levels embeds the built-in level files shipped with the server.
package levels

import (
	"embed"
	"io/fs"
)

//go:embed *.json *.yaml
var levelsFS embed.FS

// FS returns the embedded level files.
func FS() fs.FS {
	return levelsFS
}
