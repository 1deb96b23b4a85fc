package ai

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// OutputKind — форма, в которой провайдер вернул ответ.
type OutputKind int

const (
	// OutputText — ответ пришёл строкой.
	OutputText OutputKind = iota
	// OutputObject — ответ пришёл объектом, текст лежит в поле content.
	OutputObject
)

// Output — ответ провайдера до нормализации.
type Output struct {
	Kind OutputKind
	Text string // для OutputText
	Raw  string // JSON объекта для OutputObject
}

// TextOutput создаёт строковый ответ.
func TextOutput(text string) Output { return Output{Kind: OutputText, Text: text} }

// ObjectOutput создаёт ответ-объект из сырого JSON.
func ObjectOutput(raw string) Output { return Output{Kind: OutputObject, Raw: raw} }

// ParseOutput определяет форму поля output из ответа провайдера.
func ParseOutput(res gjson.Result) (Output, error) {
	switch {
	case res.Type == gjson.String:
		return TextOutput(res.String()), nil
	case res.IsObject():
		return ObjectOutput(res.Raw), nil
	case !res.Exists(), res.Type == gjson.Null:
		return Output{}, fmt.Errorf("%w: output is missing", ErrMalformedOutput)
	default:
		return Output{}, fmt.Errorf("%w: unexpected output %s", ErrMalformedOutput, res.Raw)
	}
}

// Normalize сводит обе формы ответа к одной строке.
// Для объекта берётся content: строка или список частей с полем text.
func (o Output) Normalize() (string, error) {
	if o.Kind == OutputText {
		return o.Text, nil
	}
	content := gjson.Get(o.Raw, "content")
	switch {
	case content.Type == gjson.String:
		return content.String(), nil
	case content.IsArray():
		texts := make([]string, 0, len(content.Array()))
		content.ForEach(func(_, part gjson.Result) bool {
			if part.Type == gjson.String {
				texts = append(texts, part.String())
			} else if t := part.Get("text"); t.Exists() {
				texts = append(texts, t.String())
			}
			return true
		})
		return strings.Join(texts, ""), nil
	default:
		return "", fmt.Errorf("%w: object output has no content: %s", ErrMalformedOutput, o.Raw)
	}
}
