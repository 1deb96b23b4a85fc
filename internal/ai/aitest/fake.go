// Package aitest содержит управляемый провайдер для тестов.
package aitest

import (
	"ChatGateway/internal/ai"
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"sync"
)

// Call — один зафиксированный вызов Run.
type Call struct {
	Model    string
	Messages []ai.Message
}

// FakeGateway отвечает заранее заданными ответами и запоминает, что ему отправили.
// Если ответов не осталось, возвращает "reply N".
type FakeGateway struct {
	mu      sync.Mutex
	calls   []Call
	outputs []ai.Output
	errs    []error

	// Err, если задан, возвращается из каждого Run.
	Err error
	// Embedding возвращается из Embed; nil — ai.ErrUnsupported.
	Embedding json.RawMessage
	// Block, если задан, Run ждёт закрытия канала (или отмены контекста) перед ответом.
	Block chan struct{}
	// Started получает значение при каждом входе в Run, если задан.
	Started chan struct{}
}

func NewFakeGateway(outputs ...ai.Output) *FakeGateway {
	return &FakeGateway{outputs: outputs}
}

// FailNext заставляет следующий вызов Run вернуть err.
func (f *FakeGateway) FailNext(err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()
}

func (f *FakeGateway) Name() string { return "fake" }

func (f *FakeGateway) Run(ctx context.Context, model string, messages []ai.Message) (ai.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Model: model, Messages: slices.Clone(messages)})
	n := len(f.calls)
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	} else if f.Err != nil {
		err = f.Err
	}
	var out ai.Output
	if len(f.outputs) > 0 {
		out, f.outputs = f.outputs[0], f.outputs[1:]
	} else {
		out = ai.TextOutput("reply " + strconv.Itoa(n))
	}
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- struct{}{}
	}
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return ai.Output{}, context.Cause(ctx)
		}
	}
	if err != nil {
		return ai.Output{}, err
	}
	return out, nil
}

func (f *FakeGateway) Embed(_ context.Context, _ string, _ string) (json.RawMessage, error) {
	if f.Embedding == nil {
		return nil, ai.ErrUnsupported
	}
	return f.Embedding, nil
}

// Calls возвращает копию списка вызовов.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}
