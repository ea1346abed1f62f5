package handlers

import (
	"fmt"
	"net/http"
	"path"
)

// NewNotFoundHandler answers unknown routes with a JSON 404.
func NewNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path),
		})
	}
}

// NewMethodNotAllowedHandler answers known routes hit with the wrong method.
func NewMethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path),
		})
	}
}

// NewStaticHandler serves files from dir. Missing files and directories fall
// through to the JSON 404.
func NewStaticHandler(dir string) http.HandlerFunc {
	notFound := NewNotFoundHandler()
	if dir == "" {
		return notFound
	}
	root := http.Dir(dir)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			notFound(w, r)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if name == "/" {
			name = "/index.html"
		}

		f, err := root.Open(name)
		if err != nil {
			notFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			notFound(w, r)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
