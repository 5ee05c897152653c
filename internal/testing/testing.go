// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/stockmind/internal/services"
)

// MockMarket is a test double for [services.MarketService] backed by fixed data.
type MockMarket struct {
	QuoteMap   map[string]*services.Quote
	DetailResp *services.StockDetail
	NewsItems  []services.NewsItem
	Indices    []services.IndexQuote
	Err        error
}

func (m *MockMarket) Quotes(ctx context.Context, symbols []string) (map[string]*services.Quote, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	quotes := make(map[string]*services.Quote)
	for _, symbol := range symbols {
		if quote, ok := m.QuoteMap[symbol]; ok {
			quotes[symbol] = quote
		}
	}
	return quotes, nil
}

func (m *MockMarket) Detail(ctx context.Context, symbol string) (*services.StockDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DetailResp, nil
}

func (m *MockMarket) News(ctx context.Context, symbol string) ([]services.NewsItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.NewsItems, nil
}

func (m *MockMarket) Overview(ctx context.Context) ([]services.IndexQuote, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Indices, nil
}

func (m *MockMarket) Name() string { return "mock market" }

// MockLLM is a test double for [services.LLMService] that returns a canned
// completion and records the prompts it was given.
type MockLLM struct {
	Response string
	Err      error
	Systems  []string
	Prompts  []string
}

func (m *MockLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.Systems = append(m.Systems, system)
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLM) Name() string { return "mock llm" }

// MockNotifier is a test double for [services.Notifier] that records posts.
type MockNotifier struct {
	Active bool
	Err    error
	Posts  []string
}

func (m *MockNotifier) Post(ctx context.Context, text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Posts = append(m.Posts, text)
	return nil
}

func (m *MockNotifier) Enabled() bool { return m.Active }

func (m *MockNotifier) Name() string { return "mock notifier" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
