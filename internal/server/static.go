package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticHandler serves the report viewer: a directory of static assets
// plus the data.json document the viewer fetches.
type StaticHandler struct {
	dir      string
	dataPath string
	fs       http.Handler
}

// NewStaticHandler serves the viewer assets in dir. When dataPath is
// non-empty, requests for /data.json are answered from that file even if
// it lives outside the viewer directory.
func NewStaticHandler(dir, dataPath string) *StaticHandler {
	return &StaticHandler{
		dir:      dir,
		dataPath: dataPath,
		fs:       http.FileServer(http.Dir(dir)),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *StaticHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP serves viewer assets, with caching disabled so a regenerated
// report shows up on refresh.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Path == "/data.json" && h.dataPath != "" {
		if _, err := os.Stat(h.dataPath); err != nil {
			http.Error(w, "Report not generated yet", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, filepath.Clean(h.dataPath))
		return
	}

	h.fs.ServeHTTP(w, r)
}
