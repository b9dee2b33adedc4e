package analytics

import "fmt"

type Query struct {
	Source  string         `json:"source"`
	View    string         `json:"view,omitempty"`
	Filters map[string]any `json:"filters"`
}

// Payload is a decoded analytics API response. Its shape depends on the
// requested view; report builders know what to expect per view.
type Payload map[string]any

// Maps extracts a list of JSON objects under key, tolerating absent keys and
// skipping non-object elements.
func (p Payload) Maps(key string) []map[string]any {
	list, ok := p[key].([]any)
	if !ok {
		return nil
	}

	result := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			result = append(result, m)
		}
	}

	return result
}

// Map extracts a JSON object under key, or nil.
func (p Payload) Map(key string) map[string]any {
	m, _ := p[key].(map[string]any)
	return m
}

// Error is the uniform user-facing failure for an unreachable or misbehaving
// analytics endpoint.
type Error struct {
	Endpoint string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Could not connect to the %s API.", e.Endpoint)
}
