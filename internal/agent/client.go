package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
	"cortexprobe/internal/sse"
	"cortexprobe/internal/util"
	"cortexprobe/internal/validate"
)

// Client sends agent run requests for one account.
type Client struct {
	cfg        config.AgentConfig
	httpClient *http.Client
	logger     core.Logger
}

// Result describes a finished agent run.
type Result struct {
	StatusCode int
	Summary    sse.Summary
	Duration   time.Duration
}

// NewClient creates a client. A nil httpClient gets one built from cfg.HTTPClientSettings.
func NewClient(cfg config.AgentConfig, httpClient *http.Client, logger core.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.HTTPClientSettings)
	}
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// NewHTTPClient builds the HTTP client; RequestTimeout bounds the whole exchange.
func NewHTTPClient(settings config.HTTPClientSettings) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          settings.MaxIdleConns,
		MaxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
		IdleConnTimeout:       settings.IdleConnTimeout,
		TLSHandshakeTimeout:   settings.TLSHandshakeTimeout,
		ExpectContinueTimeout: core.HTTPExpectContinueTimeout,
		ResponseHeaderTimeout: core.HTTPResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   settings.RequestTimeout,
	}
}

// Endpoint returns the agent run URL for the configured account.
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.cfg.AccountURL, "/") + core.CortexAgentRunPath
}

// Stream is an open 200 response from the agent endpoint. Close must be called.
type Stream struct {
	StatusCode  int
	ContentType string

	body   io.ReadCloser
	logger core.Logger
}

// Consume feeds the response lines to handler until [DONE] or end of body.
func (s *Stream) Consume(ctx context.Context, handler sse.Handler) (sse.Summary, error) {
	return sse.Consume(ctx, s.body, s.logger, handler)
}

// Close releases the response body. It is safe to call more than once.
func (s *Stream) Close() error {
	if s == nil || s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}

// Open validates payload and posts it once. On 200 the caller owns the returned
// Stream. Any other status is returned as *core.APIError with the body already read
// and closed; no stream is returned.
func (c *Client) Open(ctx context.Context, payload *core.AgentRequest) (*Stream, error) {
	if err := validate.ValidateAgentRequest(payload); err != nil {
		return nil, err
	}

	req, err := util.CreateCortexRequest(ctx, http.MethodPost, c.Endpoint(), payload, c.cfg.PAT)
	if err != nil {
		return nil, core.NewAppError(core.ErrCodeTransport, "failed to build request", err)
	}

	c.logger.Debug("POST %s with token %s", c.Endpoint(), util.MaskSecret(c.cfg.PAT))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewAppError(core.ErrCodeTransport, "request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, readAPIError(resp)
	}

	return &Stream{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get(core.HeaderContentType),
		body:        resp.Body,
		logger:      c.logger,
	}, nil
}

// Run opens the stream and consumes it into handler, closing it on every path.
// onConnect, when set, is called once the 200 response arrives and before any event.
func (c *Client) Run(ctx context.Context, payload *core.AgentRequest, onConnect func(*Stream), handler sse.Handler) (*Result, error) {
	start := time.Now()
	result := &Result{}

	stream, err := c.Open(ctx, payload)
	if err != nil {
		var apiErr *core.APIError
		if errors.As(err, &apiErr) {
			result.StatusCode = apiErr.StatusCode
		}
		result.Duration = time.Since(start)
		return result, err
	}
	defer func() { _ = stream.Close() }()

	result.StatusCode = stream.StatusCode
	if onConnect != nil {
		onConnect(stream)
	}

	summary, err := stream.Consume(ctx, handler)
	result.Summary = summary
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	c.logger.Info("Agent stream finished: %d events, %d unparsable, done=%v", summary.Events, summary.Unparsable, summary.Done)
	return result, nil
}

func readAPIError(resp *http.Response) *core.APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	apiErr := &core.APIError{StatusCode: resp.StatusCode, Raw: string(body)}
	if err != nil {
		apiErr.Raw = fmt.Sprintf("%s (body read error: %v)", apiErr.Raw, err)
		return apiErr
	}
	if decoded, decodeErr := util.UnmarshalAny(string(body)); decodeErr == nil {
		apiErr.Body = decoded
	}
	return apiErr
}
