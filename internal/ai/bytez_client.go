package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// BytezClient обращается к REST API Bytez: POST {base}/models/v2/{model}.
type BytezClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.SugaredLogger
}

func NewBytezClient(httpClient *http.Client, baseURL, apiKey string, logger *zap.SugaredLogger) *BytezClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BytezClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *BytezClient) Name() string { return "bytez" }

func (c *BytezClient) Run(ctx context.Context, model string, messages []Message) (Output, error) {
	body, err := bytezMessagesBody(messages)
	if err != nil {
		return Output{}, err
	}
	raw, err := c.post(ctx, model, body)
	if err != nil {
		return Output{}, err
	}
	return ParseOutput(gjson.GetBytes(raw, "output"))
}

func (c *BytezClient) Embed(ctx context.Context, model string, text string) (json.RawMessage, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "text", text)
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, model, body)
	if err != nil {
		return nil, err
	}
	out := gjson.GetBytes(raw, "output")
	if !out.Exists() || out.Type == gjson.Null {
		return nil, fmt.Errorf("%w: output is missing", ErrMalformedOutput)
	}
	return json.RawMessage(out.Raw), nil
}

// bytezMessagesBody собирает тело запроса в формате сообщений Bytez:
// текст — {type:text,text}, картинка — {type:image,source:{type:url,url}}.
func bytezMessagesBody(messages []Message) ([]byte, error) {
	body := []byte(`{"messages":[]}`)
	var err error
	for i, m := range messages {
		prefix := fmt.Sprintf("messages.%d", i)
		if body, err = sjson.SetBytes(body, prefix+".role", string(m.Role)); err != nil {
			return nil, err
		}
		if body, err = sjson.SetRawBytes(body, prefix+".content", []byte(`[]`)); err != nil {
			return nil, err
		}
		for j, p := range m.Content {
			part := fmt.Sprintf("%s.content.%d", prefix, j)
			switch p.Type {
			case PartImage:
				body, err = sjson.SetBytes(body, part+".type", "image")
				if err == nil {
					body, err = sjson.SetBytes(body, part+".source.type", "url")
				}
				if err == nil {
					body, err = sjson.SetBytes(body, part+".source.url", p.ImageURL)
				}
			default:
				body, err = sjson.SetBytes(body, part+".type", "text")
				if err == nil {
					body, err = sjson.SetBytes(body, part+".text", p.Text)
				}
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return body, nil
}

func (c *BytezClient) post(ctx context.Context, model string, body []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	url := c.baseURL + "/models/v2/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.logger.Debugw("Запрос в Bytez...", "model", model, "bytes", len(body))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("Ошибка запроса в Bytez", "model", model, "duration", time.Since(start).String(), "error", err)
		return nil, fmt.Errorf("bytez request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bytez read response: %w", err)
	}
	c.logger.Debugw("Ответ Bytez получен", "model", model, "status", resp.StatusCode, "duration", time.Since(start).String())

	if !gjson.ValidBytes(raw) {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &UpstreamError{Provider: c.Name(), StatusCode: resp.StatusCode, Details: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("%w: response is not JSON", ErrMalformedOutput)
	}
	if e := gjson.GetBytes(raw, "error"); hasError(e) {
		return nil, &UpstreamError{Provider: c.Name(), StatusCode: resp.StatusCode, Details: e.Value()}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &UpstreamError{Provider: c.Name(), StatusCode: resp.StatusCode, Details: gjson.ParseBytes(raw).Value()}
	}
	return raw, nil
}

func hasError(e gjson.Result) bool {
	switch e.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return e.String() != ""
	default:
		return e.Exists()
	}
}
