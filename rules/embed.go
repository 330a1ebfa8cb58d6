// Package rules embeds the default prompt-injection rule pack so the binary
// works out of the box without a rules directory.
package rules

import "embed"

//go:embed keywords.txt patterns.json
var fs embed.FS

// FS returns the embedded rule pack filesystem.
func FS() embed.FS {
	return fs
}
