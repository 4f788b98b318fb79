package swagger

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error constants.
var (
	ErrNilMux = errors.New("swagger: nil mux")
)

// Default ReDoc bundle location.
const defaultRedocURL = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

type options struct {
	redocURL string
}

// Option customizes Register.
type Option func(*options)

// WithRedocURL overrides the script URL of the ReDoc bundle, e.g. for an
// internal mirror.
func WithRedocURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.redocURL = url
		}
	}
}

// Register attaches the API docs and the OpenAPI document to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic(ErrNilMux)
	}
	o := options{redocURL: defaultRedocURL}
	for _, opt := range opts {
		opt(&o)
	}
	page := indexHTML(o.redocURL)

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

func indexHTML(redocURL string) []byte {
	return []byte(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>bfhl API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocURL + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`)
}
