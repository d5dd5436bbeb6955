package assistant

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/whiteboard/pkg/buildinfo"
	"github.com/matzehuels/whiteboard/pkg/cache"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/httputil"
	"github.com/matzehuels/whiteboard/pkg/observability"
)

// Prompts.
const (
	SystemPrompt = "You are a helpful educational assistant."

	VisionPrompt = "Analyze only what is drawn on the whiteboard and any page text shown on it. " +
		"Ignore toolbar buttons, the assistant panel and other interface elements, and do not " +
		"describe the picture itself (avoid phrases such as \"the image contains\"). " +
		"If the question is about the page text and the answer is not there, answer from your own knowledge. " +
		"Give a step-by-step answer with each step on its own line, and finish with the final answer when a question is asked."
)

// Request kinds reported to observability hooks.
const (
	KindChat   = "chat"
	KindVision = "vision"
)

const maxErrorBody = 4 << 10

// Options configures a Client.
type Options struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int

	// Prompt is the system prompt for Chat or the instruction sent with the
	// image for Analyze. Empty uses SystemPrompt or VisionPrompt.
	Prompt string

	// Timeout bounds each HTTP attempt. Zero uses httputil.DefaultTimeout.
	Timeout time.Duration

	// RetryAttempts and RetryDelay tune the backoff for transient failures.
	// Zero values use 3 attempts starting at one second.
	RetryAttempts int
	RetryDelay    time.Duration
}

// Client calls one model on one OpenAI-compatible endpoint.
type Client struct {
	http  *http.Client
	opts  Options
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		http:  httputil.NewClient(opts.Timeout),
		opts:  opts,
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
	}
}

// WithCache enables response caching for Chat. A nil keyer uses the
// default keyer. A ttl of zero or less leaves caching off: answers are
// sampled, so a cached one is replayed verbatim until it expires.
func (c *Client) WithCache(store cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	if ttl <= 0 {
		return c
	}
	if store != nil {
		c.cache = store
	}
	if keyer != nil {
		c.keyer = keyer
	}
	c.ttl = ttl
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.opts.Model }

// Chat answers a text question.
func (c *Client) Chat(ctx context.Context, query string) (string, error) {
	if err := errors.ValidateQuery(query); err != nil {
		return "", err
	}
	system := c.opts.Prompt
	if system == "" {
		system = SystemPrompt
	}

	key := c.keyer.ChatKey(c.opts.Model, system, query)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, KindChat)
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, KindChat)

	answer, err := c.complete(ctx, KindChat, []message{
		{Role: "system", Content: system},
		{Role: "user", Content: query},
	})
	if err != nil {
		return "", err
	}

	if c.cache.Set(ctx, key, []byte(answer), c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, KindChat, len(answer))
	}
	return answer, nil
}

// Analyze answers a question about a PNG image of the board.
func (c *Client) Analyze(ctx context.Context, query string, png []byte) (string, error) {
	if err := errors.ValidateQuery(query); err != nil {
		return "", err
	}
	if len(png) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "no image to analyze")
	}
	instruction := c.opts.Prompt
	if instruction == "" {
		instruction = VisionPrompt
	}

	return c.complete(ctx, KindVision, []message{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: instruction},
			{Type: "text", Text: query},
			{Type: "image_url", ImageURL: &imageURL{URL: DataURL("image/png", png)}},
		},
	}})
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (c *Client) complete(ctx context.Context, kind string, messages []message) (answer string, err error) {
	if c.opts.APIKey == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "no API key configured for %s", c.opts.Model)
	}

	start := time.Now()
	hooks := observability.Assistant()
	hooks.OnRequestStart(ctx, kind, c.opts.Model)
	defer func() { hooks.OnRequestComplete(ctx, kind, c.opts.Model, time.Since(start), err) }()

	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	var resp chatResponse
	err = httputil.Retry(ctx, c.opts.RetryAttempts, c.opts.RetryDelay, func() error {
		return c.post(ctx, c.opts.BaseURL+"/chat/completions", body, &resp)
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeInternal, "%s returned no choices", c.opts.Model)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	host, path := req.URL.Host, req.URL.Path
	httpHooks := observability.HTTP()
	httpHooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		httpHooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s", host)
		}
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request to %s", host))
	}
	defer resp.Body.Close()
	httpHooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, host); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode response from %s", host)
	}
	return nil
}

func checkStatus(resp *http.Response, host string) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	detail := errorDetail(resp.Body)

	switch {
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: retryAfter, Message: detail},
			"%s rate limit reached: %s", host, detail)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "%s rejected the API key: %s", host, detail)
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d: %s", host, code, detail))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d: %s", host, code, detail)
	}
}

// errorDetail extracts the provider's error message, falling back to the
// start of the raw body.
func errorDetail(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "no details"
	}
	return s
}

// Host returns the host of the configured endpoint, for log lines.
func (c *Client) Host() string {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return c.opts.BaseURL
	}
	return u.Host
}

func (c *Client) String() string {
	return fmt.Sprintf("%s@%s", c.opts.Model, c.Host())
}
