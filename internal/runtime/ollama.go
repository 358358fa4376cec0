package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaHost is the local Ollama endpoint.
const DefaultOllamaHost = "http://localhost:11434"

// Ollama talks to an Ollama server over its HTTP API.
type Ollama struct {
	host   string
	client *http.Client
}

// OllamaOption configures an Ollama client.
type OllamaOption func(*Ollama)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		o.client = c
	}
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) OllamaOption {
	return func(o *Ollama) {
		o.client.Timeout = d
	}
}

// NewOllama creates a client for the given host.
func NewOllama(host string, opts ...OllamaOption) *Ollama {
	if host == "" {
		host = DefaultOllamaHost
	}
	o := &Ollama{
		host: strings.TrimRight(host, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Host returns the configured endpoint.
func (o *Ollama) Host() string {
	return o.host
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Invoke calls /api/generate without streaming.
func (o *Ollama) Invoke(ctx context.Context, req Request) (string, error) {
	body := generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if req.Temperature > 0 {
		body.Options = map[string]any{"temperature": req.Temperature}
	}

	var out generateResponse
	if err := o.do(ctx, http.MethodPost, "/api/generate", req.Model, body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", &Error{Kind: kindFromMessage(out.Error), Model: req.Model, Err: errors.New(out.Error)}
	}
	return out.Response, nil
}

// ListModels returns the names reported by /api/tags.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := o.do(ctx, http.MethodGet, "/api/tags", "", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Version returns the server version, which doubles as a health check.
func (o *Ollama) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := o.do(ctx, http.MethodGet, "/api/version", "", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

func (o *Ollama) do(ctx context.Context, method, path, model string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindOther, Model: model, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.host+path, body)
	if err != nil {
		return &Error{Kind: KindOther, Model: model, Err: fmt.Errorf("create request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return wrap(model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(model, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrap(model, fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

func statusError(model string, code int, msg string) *Error {
	err := fmt.Errorf("ollama returned %d: %s", code, msg)
	switch {
	case code == http.StatusNotFound:
		return &Error{Kind: KindUnavailable, Model: model, Err: err}
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return &Error{Kind: KindTimeout, Model: model, Err: err}
	default:
		return &Error{Kind: kindFromMessage(msg), Model: model, Err: err}
	}
}

func kindFromMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "not found") {
		return KindUnavailable
	}
	return KindOther
}
