package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// AnthropicPrefix marks model identifiers served by the Anthropic runtime.
const AnthropicPrefix = "claude"

// ErrNotConfigured is returned when no Anthropic credentials are available.
var ErrNotConfigured = errors.New("anthropic runtime not configured")

// AnthropicConfig configures the Anthropic runtime.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseBedrock routes requests through AWS Bedrock instead of the direct API.
	UseBedrock bool
	// Region is the AWS region for Bedrock.
	Region string
	// Profile is the optional AWS shared config profile.
	Profile string
	// MaxTokens caps each response. Defaults to 4096.
	MaxTokens int64
	// Models are the claude identifiers declared in the tier table.
	Models []string
	// Options are appended to the SDK request options.
	Options []option.RequestOption
}

// Anthropic serves claude-* models through the Anthropic SDK.
type Anthropic struct {
	client     *anthropic.Client
	maxTokens  int64
	models     []string
	useBedrock bool

	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewAnthropic creates the runtime. Missing credentials are not an error:
// the runtime is created unconfigured and reports every model unavailable.
func NewAnthropic(ctx context.Context, cfg AnthropicConfig) *Anthropic {
	a := &Anthropic{
		maxTokens:  cfg.MaxTokens,
		models:     cfg.Models,
		useBedrock: cfg.UseBedrock,
	}
	if a.maxTokens == 0 {
		a.maxTokens = 4096
	}

	var opts []option.RequestOption
	if cfg.UseBedrock {
		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		if cfg.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return a
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, cfg.Options...)

	client := anthropic.NewClient(opts...)
	a.client = &client
	return a
}

// Configured reports whether credentials were found.
func (a *Anthropic) Configured() bool {
	return a.client != nil
}

// Invoke sends the prompt as a single user message.
func (a *Anthropic) Invoke(ctx context.Context, req Request) (string, error) {
	if a.client == nil {
		return "", Unavailable(req.Model, ErrNotConfigured)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.modelName(req.Model)),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", a.classifyError(req.Model, err)
	}

	a.mu.Lock()
	a.inputTok += resp.Usage.InputTokens
	a.outputTok += resp.Usage.OutputTokens
	a.calls++
	a.mu.Unlock()

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

// ListModels reports the declared claude models when credentials exist.
func (a *Anthropic) ListModels(ctx context.Context) ([]string, error) {
	if a.client == nil {
		return nil, nil
	}
	return append([]string(nil), a.models...), nil
}

// Usage returns cumulative token counts and call count.
func (a *Anthropic) Usage() (input, output int64, calls int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputTok, a.outputTok, a.calls
}

func (a *Anthropic) modelName(model string) string {
	if a.useBedrock && !strings.Contains(model, "anthropic.") {
		return "us.anthropic." + model + "-v1:0"
	}
	return model
}

func (a *Anthropic) classifyError(model string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := KindOther
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
			kind = KindUnavailable
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			kind = KindTimeout
		}
		return &Error{Kind: kind, Model: model, Err: fmt.Errorf("anthropic: %w", err)}
	}
	return wrap(model, err)
}
