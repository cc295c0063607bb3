package streamdata

import "strconv"

// fieldMap wraps the raw key→value map delivered by the streaming server.
// A key missing from the map means the server sent no value for it.
type fieldMap map[string]string

// str returns a pointer to the raw value, or nil when the field is absent.
// An empty string is a legitimate value for string fields and is preserved.
func (m fieldMap) str(key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}

// float parses the field as a float64. Absent or empty values decode to nil,
// never to zero. Anything else that fails to parse is an InvalidNumberError.
func (m fieldMap) float(key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, &InvalidNumberError{Field: key, Value: v}
	}
	return &f, nil
}
