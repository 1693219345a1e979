package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// DashboardFS holds the read-only classroom dashboard.
//
//go:embed dashboard
var DashboardFS embed.FS

// Handler serves the embedded dashboard. The page polls /get_statuses on the
// same origin, so it needs no configuration.
func Handler() http.Handler {
	sub, err := fs.Sub(DashboardFS, "dashboard")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// ServeIndex writes index.html directly.
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(DashboardFS, "dashboard/index.html")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
