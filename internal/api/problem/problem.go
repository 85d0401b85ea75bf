package problem

import (
	"encoding/json"
	"net/http"
)

const contentType = "application/problem+json"
const baseTypeURL = "https://errors.mass-payout.dev/"

const traceHeader = "X-Trace-ID"

// Details represents RFC 7807 Problem Details. Field names the offending input
// for validation problems.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id"`
}

func Type(slug string) string {
	return baseTypeURL + slug
}

// Write sends RFC 7807-compliant errors.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	WriteDetails(w, r, Details{Type: problemType, Title: title, Status: status, Detail: detail})
}

// WriteDetails fills the defaults of d and sends it. The request id is the trace
// id already echoed on the response, falling back to the inbound header.
func WriteDetails(w http.ResponseWriter, r *http.Request, d Details) {
	if d.Title == "" {
		d.Title = http.StatusText(d.Status)
	}
	if d.Type == "" {
		d.Type = "about:blank"
	}
	if r != nil && d.Instance == "" {
		d.Instance = r.URL.Path
	}
	if d.RequestID == "" {
		d.RequestID = w.Header().Get(traceHeader)
	}
	if d.RequestID == "" && r != nil {
		d.RequestID = r.Header.Get(traceHeader)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(d)
}
