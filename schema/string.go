package schema

// String is a plain text schema
type String string

// NewString returns a String schema
func NewString(v string) String {
	return String(v)
}

func (s String) String() string {
	return string(s)
}

func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}
