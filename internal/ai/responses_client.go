package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// ResponsesClient отправляет историю диалога в OpenAI через Responses API (stateless: вся история в каждом запросе).
type ResponsesClient struct {
	client *openai.Client
	logger *zap.SugaredLogger
}

func NewResponsesClient(client *openai.Client, logger *zap.SugaredLogger) *ResponsesClient {
	return &ResponsesClient{client: client, logger: logger}
}

func (c *ResponsesClient) Name() string { return "openai" }

func (c *ResponsesClient) Run(ctx context.Context, model string, messages []Message) (Output, error) {
	if c.client == nil {
		return Output{}, ErrNotConfigured
	}
	params := responses.ResponseNewParams{
		Model: openai.ChatModel(model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: responsesInput(messages)},
	}

	start := time.Now()
	c.logger.Debugw("Запрос в OpenAI...", "model", model, "messages", len(messages))
	resp, err := c.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа OpenAI", "duration", dur.String(), "error", err)
		return Output{}, c.upstream(err)
	}
	c.logger.Debugw("Ответ OpenAI получен", "duration", dur.String())

	return TextOutput(resp.OutputText()), nil
}

func (c *ResponsesClient) Embed(ctx context.Context, model string, text string) (json.RawMessage, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, c.upstream(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding list", ErrMalformedOutput)
	}
	return json.Marshal(resp.Data[0].Embedding)
}

// responsesInput переводит сообщения в input items: user — input_text/input_image,
// assistant — сообщение со строковым content.
func responsesInput(messages []Message) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleAssistant {
			// Прошлые ответы уходят обычным сообщением с ролью assistant: output_message требует id ответа от API.
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Text(), responses.EasyInputMessageRoleAssistant))
			continue
		}
		content := make(responses.ResponseInputMessageContentListParam, 0, len(m.Content))
		for _, p := range m.Content {
			switch p.Type {
			case PartImage:
				img := responses.ResponseInputContentParamOfInputImage(responses.ResponseInputImageDetailAuto)
				img.OfInputImage.ImageURL = openai.String(p.ImageURL)
				content = append(content, img)
			default:
				content = append(content, responses.ResponseInputContentParamOfInputText(p.Text))
			}
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser))
	}
	return items
}

func (c *ResponsesClient) upstream(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: c.Name(), StatusCode: apiErr.StatusCode, Details: apiErr.Message}
	}
	return fmt.Errorf("openai request: %w", err)
}
