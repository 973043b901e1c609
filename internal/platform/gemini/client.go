package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"github.com/yungbote/lecture-studio/internal/observability"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/envutil"
	"github.com/yungbote/lecture-studio/internal/platform/httpx"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
	maxRetryDelay  = 10 * time.Second
)

// ErrMissingKey is returned when the credential provider has no key.
var ErrMissingKey = errors.New("gemini: no api key configured")

// Client covers content generation and long-running video jobs for the lecture pipeline.
type Client interface {
	GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (GenerateContentResponse, error)

	// StreamGenerateContent calls onChunk once per streamed response, in arrival order.
	StreamGenerateContent(ctx context.Context, model string, req GenerateContentRequest, onChunk func(GenerateContentResponse) error) error

	PredictLongRunning(ctx context.Context, model string, req PredictRequest) (Operation, error)
	GetOperation(ctx context.Context, name string) (Operation, error)

	// Download fetches a generated file by its files/ URI.
	Download(ctx context.Context, uri string) ([]byte, string, error)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// OptionsFromEnv reads GEMINI_BASE_URL, GEMINI_TIMEOUT_SECONDS and GEMINI_MAX_RETRIES.
func OptionsFromEnv() Options {
	return Options{
		BaseURL:    envutil.String("GEMINI_BASE_URL", defaultBaseURL),
		Timeout:    envutil.Duration("GEMINI_TIMEOUT_SECONDS", 10*time.Minute),
		MaxRetries: envutil.Int("GEMINI_MAX_RETRIES", 3),
	}
}

type client struct {
	log        *logger.Logger
	creds      credentials.Provider
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration

	mu     sync.Mutex
	sdkKey string
	sdk    *genai.Client
}

// NewClient wraps the genai SDK. The key is read from creds on every call, so a key
// changed at runtime applies to the next request.
func NewClient(log *logger.Logger, creds credentials.Provider, opts Options) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("gemini: logger required")
	}
	if creds == nil {
		return nil, fmt.Errorf("gemini: credential provider required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		hc = &http.Client{Timeout: timeout}
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		log:        log.With("client", "Gemini"),
		creds:      creds,
		baseURL:    baseURL,
		httpClient: hc,
		maxRetries: maxRetries,
		backoff:    time.Second,
	}, nil
}

// APIError is a non-2xx Gemini response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	// RetryDelay is the server's RetryInfo hint, e.g. "3s".
	RetryDelay string

	err error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Status)
}

func (e *APIError) Unwrap() error { return e.err }

func (e *APIError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// session returns an SDK client bound to the current key, rebuilding it when the key changes.
func (c *client) session(ctx context.Context) (*genai.Client, error) {
	key, ok := c.creds.Get()
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return nil, ErrMissingKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil && c.sdkKey == key {
		return c.sdk, nil
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.baseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: init sdk: %w", err)
	}
	c.sdk, c.sdkKey = sdk, key
	return sdk, nil
}

// final marks an error that must not be retried.
type final struct{ err error }

func (f final) Error() string { return f.err.Error() }
func (f final) Unwrap() error { return f.err }

// withRetry runs attempt until it succeeds, fails with a non-retryable error, or retries run out.
func (c *client) withRetry(ctx context.Context, op string, attempt func(sdk *genai.Client) error) error {
	backoff := c.backoff
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sdk, err := c.session(ctx)
		if err != nil {
			return err
		}
		err = attempt(sdk)
		if err == nil {
			return nil
		}
		var f final
		if errors.As(err, &f) {
			return f.err
		}
		err = fromSDKError(err)
		if !httpx.IsRetryableError(err) || i == c.maxRetries {
			return err
		}

		hint := ""
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			hint = apiErr.RetryDelay
		}
		sleepFor := httpx.JitterSleep(httpx.RetryDelay(hint, backoff, maxRetryDelay))
		c.log.Warn("Gemini request retrying",
			"op", op,
			"attempt", i+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err,
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
}

func modelName(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}

func (c *client) GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (GenerateContentResponse, error) {
	ctx, span := observability.StartSpan(ctx, "gemini.generateContent", attribute.String("gemini.model", model))
	var out GenerateContentResponse
	contents, cfg, err := toSDKRequest(req)
	if err == nil {
		err = c.withRetry(ctx, "generateContent", func(sdk *genai.Client) error {
			resp, err := sdk.Models.GenerateContent(ctx, modelName(model), contents, cfg)
			if err != nil {
				return err
			}
			out = fromSDKResponse(resp)
			return nil
		})
	}
	observability.EndSpan(span, err)
	return out, err
}

func (c *client) StreamGenerateContent(ctx context.Context, model string, req GenerateContentRequest, onChunk func(GenerateContentResponse) error) error {
	ctx, span := observability.StartSpan(ctx, "gemini.streamGenerateContent", attribute.String("gemini.model", model))
	chunks := 0
	contents, cfg, err := toSDKRequest(req)
	if err == nil {
		// Only opening the stream is retried; once chunks flow, a failure is final.
		err = c.withRetry(ctx, "streamGenerateContent", func(sdk *genai.Client) error {
			for resp, err := range sdk.Models.GenerateContentStream(ctx, modelName(model), contents, cfg) {
				if err != nil {
					if chunks > 0 {
						return final{fromSDKError(err)}
					}
					return err
				}
				chunks++
				if onChunk == nil {
					continue
				}
				if err := onChunk(fromSDKResponse(resp)); err != nil {
					return final{err}
				}
			}
			return nil
		})
	}
	span.SetAttributes(attribute.Int("gemini.chunks", chunks))
	observability.EndSpan(span, err)
	return err
}

func toSDKRequest(req GenerateContentRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	contents, err := toSDKContents(req.Contents)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := toSDKConfig(req.GenerationConfig)
	if err != nil {
		return nil, nil, err
	}
	return contents, cfg, nil
}

func (c *client) PredictLongRunning(ctx context.Context, model string, req PredictRequest) (Operation, error) {
	ctx, span := observability.StartSpan(ctx, "gemini.generateVideos", attribute.String("gemini.model", model))
	var out Operation
	src, cfg, err := toSDKVideo(req)
	if err == nil {
		err = c.withRetry(ctx, "generateVideos", func(sdk *genai.Client) error {
			op, err := sdk.Models.GenerateVideosFromSource(ctx, modelName(model), src, cfg)
			if err != nil {
				return err
			}
			out = fromSDKOperation(op)
			return nil
		})
	}
	if err == nil && strings.TrimSpace(out.Name) == "" && !out.Done {
		err = errors.New("gemini: operation missing name")
	}
	observability.EndSpan(span, err)
	return out, err
}

func (c *client) GetOperation(ctx context.Context, name string) (Operation, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return Operation{}, errors.New("gemini: operation name required")
	}
	ctx, span := observability.StartSpan(ctx, "gemini.getVideosOperation", attribute.String("gemini.operation", name))
	var out Operation
	err := c.withRetry(ctx, "getVideosOperation", func(sdk *genai.Client) error {
		op, err := sdk.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: name}, nil)
		if err != nil {
			return err
		}
		out = fromSDKOperation(op)
		return nil
	})
	observability.EndSpan(span, err)
	return out, err
}

func (c *client) Download(ctx context.Context, uri string) ([]byte, string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.Contains(uri, "files/") {
		return nil, "", fmt.Errorf("gemini: invalid download uri")
	}
	ctx, span := observability.StartSpan(ctx, "gemini.download")
	var body []byte
	err := c.withRetry(ctx, "download", func(sdk *genai.Client) error {
		b, err := sdk.Files.Download(ctx, genai.NewDownloadURIFromVideo(&genai.Video{URI: uri}), nil)
		if err != nil {
			return err
		}
		if apiErr := errorBody(b); apiErr != nil {
			return apiErr
		}
		body = b
		return nil
	})
	if err != nil {
		observability.EndSpan(span, err)
		return nil, "", err
	}
	span.SetAttributes(attribute.Int("gemini.bytes", len(body)))
	observability.EndSpan(span, nil)
	return body, mediacodec.SniffMime(body), nil
}

// errorBody recognizes an API error envelope returned in place of file bytes.
func errorBody(b []byte) error {
	if mediacodec.SniffMime(b) != "application/json" {
		return nil
	}
	var env struct {
		Error *genai.APIError `json:"error"`
	}
	if json.Unmarshal(b, &env) != nil || env.Error == nil {
		return nil
	}
	return *env.Error
}
