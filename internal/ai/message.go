package ai

import "strings"

// Role роль автора сообщения в диалоге.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType тип части содержимого сообщения.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// Part — одна часть содержимого: либо текст, либо ссылка на изображение.
type Part struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// TextPart создаёт текстовую часть.
func TextPart(text string) Part { return Part{Type: PartText, Text: text} }

// ImagePart создаёт часть со ссылкой на изображение.
func ImagePart(url string) Part { return Part{Type: PartImage, ImageURL: url} }

// Message — сообщение диалога, не зависящее от провайдера.
type Message struct {
	Role    Role   `json:"role"`
	Content []Part `json:"content"`
}

// Text возвращает текстовые части сообщения, склеенные переводом строки.
func (m Message) Text() string {
	texts := make([]string, 0, len(m.Content))
	for _, p := range m.Content {
		if p.Type == PartText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ImageURLs возвращает ссылки на изображения в порядке следования.
func (m Message) ImageURLs() []string {
	var urls []string
	for _, p := range m.Content {
		if p.Type == PartImage {
			urls = append(urls, p.ImageURL)
		}
	}
	return urls
}
