package alchemy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/rhuss/alchemy/pkg/debug"
	"github.com/rhuss/alchemy/pkg/observability"
)

const (
	// DefaultBaseURL is the service host plus the /calls prefix every
	// endpoint path is appended to.
	DefaultBaseURL = "http://access.alchemyapi.com/calls"

	// KeyLength is the exact length of a well-formed API key.
	KeyLength = 40

	tracerName = "github.com/rhuss/alchemy/pkg/alchemy"
)

// Config holds configuration for a Client.
type Config struct {
	// APIKey is sent as the apikey parameter on every call.
	APIKey string

	// BaseURL replaces DefaultBaseURL, e.g. to target a fake service in tests.
	BaseURL string

	// Timeout for a whole call. Zero leaves it to the transport.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client

	// RateLimit caps requests per second sent by this client. Zero means
	// no limit. Calls rejected locally do not consume tokens.
	RateLimit float64

	// Burst is the number of requests allowed at once under RateLimit.
	// Values below 1 are treated as 1.
	Burst int

	// TracerProvider creates the client spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a Config for the public service.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
	}
}

// Client calls the analysis service. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

// Request describes one call for Call and Go.
type Request struct {
	Capability Capability
	Flavor     Flavor

	// Data is the text, URL or HTML to analyze, or the path of a local file
	// for image uploads.
	Data string

	// Target is the phrase for targeted sentiment. Ignored otherwise.
	Target string

	Options *Options
}

// New creates a Client for the public service with the given API key.
func New(apiKey string) (*Client, error) {
	return NewWithConfig(DefaultConfig(apiKey))
}

// NewWithConfig creates a Client. The key format is checked; nothing is sent
// over the network.
func NewWithConfig(cfg Config) (*Client, error) {
	if n := utf8.RuneCountInString(cfg.APIKey); n != KeyLength {
		return nil, NewInvalidKeyError(n)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		limiter:    limiter,
		tracer:     tp.Tracer(tracerName),
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Call performs a single request and returns its only Result.
func (c *Client) Call(ctx context.Context, req Request) Result {
	capability := "unknown"
	if _, ok := endpoints[req.Capability]; ok {
		capability = string(req.Capability)
	}
	flavor := "unknown"
	if f, ok := ParseFlavor(string(req.Flavor)); ok {
		flavor = string(f)
	}

	ctx, span := c.tracer.Start(ctx, "alchemy."+capability,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("alchemy.capability", string(req.Capability)),
			attribute.String("alchemy.flavor", string(req.Flavor)),
		))
	defer span.End()

	start := time.Now()
	res := c.call(ctx, req)
	result := outcome(res)
	observability.RecordCall(capability, flavor, result, time.Since(start))

	span.SetAttributes(attribute.String("alchemy.outcome", result))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Message)
	}

	return res
}

// Go performs the request in a new goroutine. The returned channel receives
// exactly one Result and is then closed.
func (c *Client) Go(ctx context.Context, req Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- c.Call(ctx, req)
	}()
	return ch
}

func (c *Client) call(ctx context.Context, req Request) Result {
	path, ok := EndpointPath(req.Capability, req.Flavor)
	if !ok {
		return failed(NewUnsupportedFlavorError(req.Capability, req.Flavor))
	}

	params := req.Options.values()

	// Image uploads send the file itself, not a parameter.
	if req.Flavor == FlavorImage {
		return c.execute(ctx, path, params, req.Data, true)
	}

	params.Set(string(req.Flavor), req.Data)

	if req.Capability == CapabilitySentimentTargeted {
		if req.Target == "" {
			return failed(NewMissingTargetError())
		}
		params.Set("target", req.Target)
	}

	return c.execute(ctx, path, params, "", false)
}

// execute sends params to the endpoint. For uploads the params go into the
// query string and the file at uploadPath becomes the raw request body;
// otherwise the params are the form-encoded body.
func (c *Client) execute(ctx context.Context, path string, params url.Values, uploadPath string, upload bool) Result {
	if upload && uploadPath == "" {
		return failed(NewTransportError("failed to open upload file", os.ErrNotExist))
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed(NewTransportError("rate limit wait", err))
		}
	}

	params.Set("apikey", c.apiKey)
	params.Set("outputMode", "json")

	target := c.baseURL + path

	var (
		body   io.Reader
		length int64
	)
	if upload {
		f, err := os.Open(uploadPath)
		if err != nil {
			return failed(NewTransportError("failed to open upload file", err))
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return failed(NewTransportError("failed to stat upload file", err))
		}

		params.Set("imagePostMode", "raw")
		target += "?" + params.Encode()
		length = info.Size()
		body = f
		if length == 0 {
			body = http.NoBody
		}
		observability.UploadBytesTotal.Add(float64(length))
	} else {
		encoded := params.Encode()
		body = strings.NewReader(encoded)
		length = int64(len(encoded))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return failed(NewTransportError("failed to create HTTP request", err))
	}
	httpReq.ContentLength = length
	if !upload {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	debug.Log("client", "request", "method", http.MethodPost, "path", path,
		"upload", upload, "content_length", length)
	if debug.TraceIsEnabled("client") {
		debug.Raw("client", redacted(params).Encode())
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failed(NewTransportError("request failed", err))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return failed(NewTransportError("failed to read response", err))
	}

	debug.Log("client", "response", "path", path, "status", httpResp.StatusCode,
		"bytes", len(raw), "duration", time.Since(start))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	debug.Raw("client", string(raw))

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return failed(NewTransportError(
				fmt.Sprintf("unexpected HTTP status %d: %s", httpResp.StatusCode, debug.Truncate(string(raw), 200)), nil))
		}
		return failed(NewParseError(err))
	}

	return Result{Data: doc}
}

// outcome labels a Result for metrics.
func outcome(r Result) string {
	if r.Err != nil {
		return string(r.Err.Kind)
	}
	if status, _ := r.ServiceStatus(); status == StatusError {
		return "service_error"
	}
	return "ok"
}

// redacted returns a copy of params with the API key masked.
func redacted(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = v
	}
	if _, ok := out["apikey"]; ok {
		out.Set("apikey", "REDACTED")
	}
	return out
}
