package ai

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseOutputAndNormalize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		kind OutputKind
	}{
		{"string", `{"output":"Hi there"}`, "Hi there", OutputText},
		{"object with string content", `{"output":{"role":"assistant","content":"Hi there"}}`, "Hi there", OutputObject},
		{"object with parts", `{"output":{"role":"assistant","content":[{"type":"text","text":"Hi "},{"type":"text","text":"there"}]}}`, "Hi there", OutputObject},
		{"empty string", `{"output":""}`, "", OutputText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseOutput(gjson.Get(tt.body, "output"))
			if err != nil {
				t.Fatalf("ParseOutput() error: %v", err)
			}
			if out.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", out.Kind, tt.kind)
			}
			got, err := out.Normalize()
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseOutputMalformed(t *testing.T) {
	for _, body := range []string{`{}`, `{"output":null}`, `{"output":42}`, `{"output":[1,2]}`} {
		if _, err := ParseOutput(gjson.Get(body, "output")); !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("ParseOutput(%s) error = %v, want ErrMalformedOutput", body, err)
		}
	}
}

func TestNormalizeObjectWithoutContent(t *testing.T) {
	_, err := ObjectOutput(`{"role":"assistant"}`).Normalize()
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("Normalize() error = %v, want ErrMalformedOutput", err)
	}
}
