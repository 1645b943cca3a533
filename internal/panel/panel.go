package panel

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed web/*
var content embed.FS

// Handler serves the map page and its assets.
//
// Assets come from dir when it names an existing directory, otherwise
// from the embedded copy. Extensionless paths such as /colos/201 are
// page routes and get index.html; a missing asset is a 404.
func Handler(dir string) http.Handler {
	var assets fs.FS
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			assets = os.DirFS(dir)
		}
	}
	if assets == nil {
		sub, err := fs.Sub(content, "web")
		if err != nil {
			panic("panel: embedded assets missing: " + err.Error())
		}
		assets = sub
	}
	files := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := fs.Stat(assets, name); err == nil {
			files.ServeHTTP(w, r)
			return
		}
		if path.Ext(name) != "" {
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, assets, "index.html")
	})
}
