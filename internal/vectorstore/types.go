package vectorstore

// Point is one stored record: a fresh unique identifier, a unit-normalized
// vector, and a provenance payload. Points are immutable once stored; there
// is no update or delete path in this system.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Hit is one search match, ordered by descending Score. The payload is the
// full stored payload; raw vectors are never returned.
type Hit struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// PayloadString reads a string payload field, returning fallback when the
// field is missing or not a string.
func (h Hit) PayloadString(key, fallback string) string {
	if v, ok := h.Payload[key].(string); ok {
		return v
	}
	return fallback
}

// PayloadInt reads an integer payload field, returning fallback when the
// field is missing or not numeric.
func (h Hit) PayloadInt(key string, fallback int) int {
	switch v := h.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
