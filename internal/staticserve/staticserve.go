// Package staticserve serves the embeddable widget assets: files under
// a fixed virtual prefix mapped onto a root directory, with
// path-traversal guarding and JSON 404s.
package staticserve

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bubblechat/bubblechat/internal/logging"
)

// Prefix is the virtual path the assets are served under.
const Prefix = "/assets/"

// Handler serves files from root under Prefix.
func Handler(root string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveFile(w, r, root)
	}))
	return loggingMiddleware(mux)
}

func serveFile(w http.ResponseWriter, r *http.Request, root string) {
	rel := strings.TrimPrefix(r.URL.Path, Prefix)
	if containsTraversal(rel) {
		notFound(w)
		return
	}
	clean := path.Clean("/" + rel)
	target := filepath.Join(root, filepath.FromSlash(clean))

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		notFound(w)
		return
	}
	data, err := os.ReadFile(target)
	if err != nil {
		notFound(w)
		return
	}

	w.Header().Set("Content-Type", contentType(target))
	w.Write(data)
}

// containsTraversal rejects any dot-dot segment before path cleaning,
// including encoded separators that survive URL parsing.
func containsTraversal(rel string) bool {
	for _, segment := range strings.FieldsFunc(rel, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if segment == ".." {
			return true
		}
	}
	return false
}

func contentType(target string) string {
	if ct := mime.TypeByExtension(filepath.Ext(target)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Info("assets %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// Serve runs the asset server until the context is cancelled. Failures
// to bind are returned; the agent treats them as a degraded feature,
// not a fatal error.
func Serve(ctx context.Context, addr, root string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      Handler(root),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	logging.Info("asset server listening on %s (root %s)", addr, root)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
