// Package mocks provides a scripted language model for tests.
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/hrygo/taskgpt/ai/core/llm"
)

type reply struct {
	text string
	err  error
}

type rule struct {
	contains []string
	replies  []reply
}

// MockLLM answers prompts from scripted rules. A rule matches when the prompt
// contains all of its substrings; queued replies are consumed in order and the
// last one repeats. Unmatched prompts get the default response.
type MockLLM struct {
	mu              sync.Mutex
	rules           []*rule
	defaultResponse reply
	prompts         []string
}

// NewMockLLM creates a MockLLM whose default response is "None".
func NewMockLLM() *MockLLM {
	return &MockLLM{defaultResponse: reply{text: "None"}}
}

// WithResponse queues output for prompts containing every string in contains.
func (m *MockLLM) WithResponse(output string, contains ...string) *MockLLM {
	m.add(reply{text: output}, contains)
	return m
}

// WithError queues a failure for prompts containing every string in contains.
func (m *MockLLM) WithError(err error, contains ...string) *MockLLM {
	m.add(reply{err: err}, contains)
	return m
}

// WithDefaultResponse sets the reply for unmatched prompts.
func (m *MockLLM) WithDefaultResponse(output string) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = reply{text: output}
	return m
}

// WithDefaultError makes every unmatched prompt fail.
func (m *MockLLM) WithDefaultError(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = reply{err: err}
	return m
}

func (m *MockLLM) add(r reply, contains []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rules {
		if equal(existing.contains, contains) {
			existing.replies = append(existing.replies, r)
			return
		}
	}
	m.rules = append(m.rules, &rule{contains: contains, replies: []reply{r}})
}

// Complete implements llm.Completer.
func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	for _, r := range m.rules {
		if !matches(prompt, r.contains) {
			continue
		}
		next := r.replies[0]
		if len(r.replies) > 1 {
			r.replies = r.replies[1:]
		}
		return next.text, next.err
	}
	return m.defaultResponse.text, m.defaultResponse.err
}

// Chat implements llm.Service using the last user message as the prompt.
func (m *MockLLM) Chat(ctx context.Context, msgs []llm.Message) (string, *llm.CallStats, error) {
	prompt := ""
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			prompt = msgs[i].Content
			break
		}
	}
	out, err := m.Complete(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	return out, &llm.CallStats{}, nil
}

// Warmup implements llm.Service (no-op).
func (m *MockLLM) Warmup(context.Context) {}

// Prompts returns every prompt received so far.
func (m *MockLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// CallCount returns how many prompts were received.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func matches(prompt string, contains []string) bool {
	for _, c := range contains {
		if !strings.Contains(prompt, c) {
			return false
		}
	}
	return true
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ llm.Service = (*MockLLM)(nil)
