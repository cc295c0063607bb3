package streamdata

import "fmt"

// InvalidNumberError reports a numeric wire field whose value could not be
// parsed as a float.
type InvalidNumberError struct {
	Field string
	Value string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid numeric value for field %s: %q", e.Field, e.Value)
}

// UnknownEnumValueError reports an enum wire field carrying a token outside
// the documented set. Decoding fails hard instead of defaulting: a silent
// default could mask a broker-side protocol change.
type UnknownEnumValueError struct {
	Field string
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown value for field %s: %q", e.Field, e.Value)
}
