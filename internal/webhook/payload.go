package webhook

import (
	"encoding/json"
	"net/url"

	"github.com/gin-gonic/gin"
)

// ExtractPayload parses the raw request body into a generic mapping. JSON is
// attempted first; on failure the body is decoded as form fields (minus
// framework control keys). Never fails — a totally unreadable body yields an
// empty mapping and the caller tolerates an empty event.
func ExtractPayload(c *gin.Context) map[string]any {
	raw, err := c.GetRawData()
	if err == nil && len(raw) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed != nil {
			return parsed
		}

		if c.ContentType() == "application/x-www-form-urlencoded" {
			if values, err := url.ParseQuery(string(raw)); err == nil {
				return formFields(values)
			}
		}
	}

	// The body may already have been drained by an upstream form read (e.g.
	// the session check); in that case the parsed form is still available.
	if err := c.Request.ParseForm(); err == nil && len(c.Request.PostForm) > 0 {
		return formFields(c.Request.PostForm)
	}

	return map[string]any{}
}

func formFields(values url.Values) map[string]any {
	form := map[string]any{}
	for key, vals := range values {
		if key == "cmd" {
			continue
		}
		if len(vals) > 0 {
			form[key] = vals[0]
		}
	}
	return form
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
