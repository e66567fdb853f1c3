package authflow

import (
	"embed"
	"io/fs"
)

//go:embed views
var viewsFS embed.FS

// GetViewsFS returns the flow templates rooted at the views directory
func GetViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return viewsFS
	}
	return sub
}
