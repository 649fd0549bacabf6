// Package web bundles the notice templates and stylesheet into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/layouts/*.html templates/pages/*.html
var Templates embed.FS

//go:embed static/css/*.css
var static embed.FS

// Static returns the asset tree rooted at static/, ready for http.FS.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
