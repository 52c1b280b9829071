package http

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// ServeFrontend returns a handler for the embedded dashboard assets. The
// dashboard is a single page, so unknown non-asset paths fall back to
// index.html.
func ServeFrontend(frontendFS fs.FS, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if frontendFS == nil {
			http.Error(w, "dashboard assets not available", http.StatusNotFound)
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			name = "index.html"
		}

		file, err := frontendFS.Open(name)
		if err != nil {
			if path.Ext(name) != "" {
				logger.WarnContext(r.Context(), "frontend asset not found",
					slog.String("path", name))
				http.NotFound(w, r)
				return
			}
			name = "index.html"
			if file, err = frontendFS.Open(name); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		defer file.Close()

		// Set content type based on extension
		switch strings.ToLower(path.Ext(name)) {
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "application/javascript")
		case ".css":
			w.Header().Set("Content-Type", "text/css")
		case ".json":
			w.Header().Set("Content-Type", "application/json")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		case ".png":
			w.Header().Set("Content-Type", "image/png")
		case ".ico":
			w.Header().Set("Content-Type", "image/x-icon")
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
		}

		// The page shell must always be revalidated so API changes show up,
		// while fingerprint-free assets get a short cache window.
		if name == "index.html" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		io.Copy(w, file)
	}
}
