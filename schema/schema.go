package schema

import (
	"encoding/json"
	"fmt"
)

// Schema is message schema interface
type Schema interface {
	fmt.Stringer
}

// Stringify renders a schema for a prompt. Plain strings are returned as is,
// schemas with their own String() use it, anything else is JSON encoded.
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	if str := s.String(); str != "" {
		return str
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes is the []byte form of Stringify
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
