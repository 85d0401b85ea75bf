package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

const payoutsPathSegment = "/v1/payments/payouts/"

// Document is a provider response passed through untouched to callers.
type Document map[string]any

// DecodeDocument parses a JSON object. An empty body decodes to an empty document.
func DecodeDocument(body []byte) (Document, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// ExtractBatchID finds the provider batch id in a create-payout response.
// It reads batch_header.payout_batch_id (either naming convention) and falls back to
// the last path segment of a payouts link. ok is false when neither is present.
func ExtractBatchID(doc Document) (string, bool) {
	norm := normalizeKeys(map[string]any(doc))

	if header, isMap := norm["batch_header"].(map[string]any); isMap {
		if id, _ := header["payout_batch_id"].(string); id != "" {
			return id, true
		}
	}

	links, _ := norm["links"].([]any)
	for _, raw := range links {
		link, isMap := raw.(map[string]any)
		if !isMap {
			continue
		}
		href, _ := link["href"].(string)
		if !strings.Contains(href, payoutsPathSegment) {
			continue
		}
		if i := strings.IndexAny(href, "?#"); i >= 0 {
			href = href[:i]
		}
		if id := href[strings.LastIndex(href, "/")+1:]; id != "" {
			return id, true
		}
	}
	return "", false
}

// BatchStatus returns batch_header.batch_status if present.
func BatchStatus(doc Document) string {
	norm := normalizeKeys(map[string]any(doc))
	if header, ok := norm["batch_header"].(map[string]any); ok {
		status, _ := header["batch_status"].(string)
		return status
	}
	return ""
}

// normalizeKeys rewrites camelCase object keys to snake_case at every depth. When both
// spellings are present the snake_case value wins unless it is empty.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if snakeCase(k) == k {
			out[k] = normalizeValue(v)
		}
	}
	for k, v := range m {
		key := snakeCase(k)
		if key == k {
			continue
		}
		if existing, found := out[key]; found && !isEmptyValue(existing) {
			continue
		}
		out[key] = normalizeValue(v)
	}
	return out
}

// isEmptyValue treats null, "", {} and [] as absent.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeKeys(t)
	case Document:
		return normalizeKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeKeys(item)
		}
		return out
	default:
		return v
	}
}

// snakeCase converts payoutBatchId and payoutBatchID to payout_batch_id.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
