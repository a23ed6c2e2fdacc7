// Package scripts embeds the built-in table post-processing scripts.
package scripts

import "embed"

// FS holds the built-in .risor scripts, addressed by base name.
//
//go:embed *.risor
var FS embed.FS
