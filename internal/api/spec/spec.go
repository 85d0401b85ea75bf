package spec

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
)

//go:embed openapi.yaml
var openapiDoc []byte

// etag is fixed for the lifetime of the binary since the document is embedded.
var etag = `"` + func() string {
	sum := sha256.Sum256(openapiDoc)
	return hex.EncodeToString(sum[:8])
}() + `"`

// OpenAPIHandler serves the embedded OpenAPI document and answers conditional
// requests with 304.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openapiDoc)
	}
}
