// web/embed.go
package web

import (
	"embed"
	"io/fs"
)

//go:embed pages
var pages embed.FS

// Pages returns the HTML pages and assets rooted at pages/.
func Pages() (fs.FS, error) {
	return fs.Sub(pages, "pages")
}
