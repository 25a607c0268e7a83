// Package mockserver serves a local stand-in for the Cortex agent run endpoint.
package mockserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cortexprobe/internal/core"
	"cortexprobe/internal/util"
	"cortexprobe/internal/validate"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// Options configures the fake endpoint.
type Options struct {
	// Token is the accepted PAT. Empty accepts any bearer token.
	Token string
	// Lines is the raw stream script, written one line at a time. Nil uses DefaultLines.
	Lines []string
	// Status forces an error status instead of streaming when non-zero and not 200.
	Status int
	// ErrorBody is sent with Status. Empty sends a JSON error document.
	ErrorBody string
	// LineDelay pauses between streamed lines.
	LineDelay time.Duration
	Logger    core.Logger
}

// DefaultLines is a short agent answer: text, a tool call, a tool result, a
// non-data line, a keep-alive blank, an unparsable data line and the sentinel.
func DefaultLines() []string {
	return []string{
		"event: message.delta",
		`data: {"id":"msg_001","object":"message.delta","delta":{"content":[{"index":0,"type":"text","text":"Looking up total sales by region."}]}}`,
		"",
		"event: message.delta",
		`data: {"id":"msg_001","object":"message.delta","delta":{"content":[{"index":1,"type":"tool_use","tool_use":{"tool_use_id":"toolu_01","name":"Analyst1","input":{"messages":["Show me the total sales by region"]}}}]}}`,
		"",
		`data: {"id":"msg_001","object":"message.delta","delta":{"content":[{"index":2,"type":"tool_results","tool_results":{"tool_use_id":"toolu_01","status":"success","content":[{"type":"json","json":{"sql":"SELECT region, SUM(amount) AS total_sales FROM sales GROUP BY region"}}]}}]}}`,
		"",
		"data: keep-alive",
		core.StreamDoneLine,
	}
}

type server struct {
	opts Options
}

// NewRouter builds the gin engine for the fake endpoint.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = &core.NopLogger{}
	}
	if opts.Lines == nil {
		opts.Lines = DefaultLines()
	}
	s := &server{opts: opts}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	// gin reads ":run" as a parameter, so the route also matches "agent<anything>".
	router.POST(core.CortexAgentRunPath, exactPath(core.CortexAgentRunPath), s.authenticate, s.agentRun)
	return router
}

func exactPath(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path != path {
			respondWithError(c, http.StatusNotFound, "390404", "Unknown endpoint.")
			return
		}
		c.Next()
	}
}

func respondWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":       code,
		"message":    message,
		"request_id": util.GenerateRunID(),
	})
}

func (s *server) authenticate(c *gin.Context) {
	auth := c.GetHeader(core.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, core.AuthBearerPrefix)
	if !ok || token == "" {
		respondWithError(c, http.StatusUnauthorized, "390303", "Missing bearer token.")
		return
	}
	if s.opts.Token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Token)) != 1 {
		respondWithError(c, http.StatusUnauthorized, "390303", "Invalid OAuth access token.")
		return
	}
	if c.GetHeader(core.HeaderSnowflakeTokenType) != core.TokenTypeProgrammaticAccess {
		respondWithError(c, http.StatusUnauthorized, "390303", "Unsupported token type.")
		return
	}
	c.Next()
}

func (s *server) agentRun(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, core.MaxResponseBodySize))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "399504", "Could not read request body.")
		return
	}

	var req core.AgentRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		respondWithError(c, http.StatusBadRequest, "399504", fmt.Sprintf("Invalid JSON body: %v", err))
		return
	}
	if err := validate.ValidateAgentRequest(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "399504", err.Error())
		return
	}

	if s.opts.Status != 0 && s.opts.Status != http.StatusOK {
		if s.opts.ErrorBody != "" {
			c.Data(s.opts.Status, "text/plain; charset=utf-8", []byte(s.opts.ErrorBody))
			return
		}
		respondWithError(c, s.opts.Status, "399505", http.StatusText(s.opts.Status))
		return
	}

	s.opts.Logger.Info("Streaming %d lines for model %s", len(s.opts.Lines), req.Model)
	c.Header(core.HeaderContentType, core.ContentTypeEventStream)
	c.Header(core.HeaderCacheControl, core.CacheControlNoCache)
	c.Header(core.HeaderConnection, core.ConnectionKeepAlive)
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for _, line := range s.opts.Lines {
		if _, err := fmt.Fprintf(c.Writer, "%s\n", line); err != nil {
			s.opts.Logger.Warn("Client went away: %v", err)
			return
		}
		c.Writer.Flush()

		if s.opts.LineDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.LineDelay):
			}
		}
	}
}

// Run serves the fake endpoint on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = &core.NopLogger{}
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Error("Mock server shutdown error: %v", err)
		}
	}()

	opts.Logger.Info("Mock agent endpoint listening on %s%s", addr, core.CortexAgentRunPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mock server error: %w", err)
	}
	return nil
}
