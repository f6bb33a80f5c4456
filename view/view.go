package view

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed all:frontend
var dist embed.FS

func NewWebServer() (http.Handler, error) {
	distFS, err := fs.Sub(dist, "frontend")
	if err != nil {
		return nil, fmt.Errorf("failed to get frontend subdirectory: %w", err)
	}
	fsys := http.FS(distFS)
	fileServer := http.FileServer(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := fsys.Open(path)
		if err == nil {
			_ = f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		// File not found - serve index.html
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	}), nil
}
