package ai

import (
	"context"
	"encoding/json"
)

// StubClient заглушка, которая не делает реальных запросов: отвечает эхом последней реплики.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) Name() string { return "stub" }

func (c *StubClient) Run(_ context.Context, _ string, messages []Message) (Output, error) {
	if len(messages) == 0 {
		return TextOutput("запрос получен"), nil
	}
	return TextOutput("запрос получен: " + messages[len(messages)-1].Text()), nil
}

func (c *StubClient) Embed(context.Context, string, string) (json.RawMessage, error) {
	return nil, ErrUnsupported
}
