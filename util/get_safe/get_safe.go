package getsafe

// String returns the value under key when it is a string, or "" otherwise.
func String[V any](payload map[string]V, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := any(v).(string); ok {
			return s
		}
	}
	return ""
}

// Has reports whether key is present in payload, regardless of its value.
func Has[V any](payload map[string]V, key string) bool {
	_, ok := payload[key]
	return ok
}
