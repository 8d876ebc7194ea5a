package schema

import (
	"testing"
)

func TestStringify(t *testing.T) {
	type Profile struct {
		Base
		City string `json:"city,omitempty" jsonschema:"title=city"`
		Age  int    `json:"age,omitempty" jsonschema:"title=age"`
	}
	tests := []struct {
		name   string
		input  Schema
		expect string
	}{
		{name: "nil", input: nil, expect: ""},
		{name: "string", input: NewString("plain text"), expect: "plain text"},
		{name: "stringer", input: NewInput("hello"), expect: "hello"},
		{name: "json fallback", input: Profile{City: "Bangkok", Age: 30}, expect: `{"city":"Bangkok","age":30}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.input); got != tt.expect {
				t.Errorf("expect %s, but got %s", tt.expect, got)
			}
		})
	}
}

func TestStringUnmarshal(t *testing.T) {
	var s String
	if err := s.Unmarshal([]byte("raw bytes")); err != nil {
		t.Fatal(err)
	}
	if string(ToBytes(s)) != "raw bytes" {
		t.Errorf("expect raw bytes, but got %s", s)
	}
}
