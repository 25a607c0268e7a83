package util

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"cortexprobe/internal/core"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// MarshalJSON wraps Sonic for performance
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// MarshalIndentJSON renders v with two-space indentation and sorted map keys.
func MarshalIndentJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

// eventJSON keeps numbers exact (json.Number) and leaves <, > and & unescaped.
var eventJSON = sonic.Config{
	UseNumber:  true,
	EscapeHTML: false,
}.Froze()

// UnmarshalAny decodes any JSON value (object, array, scalar). Numbers decode to json.Number.
func UnmarshalAny(data string) (any, error) {
	var v any
	if err := eventJSON.UnmarshalFromString(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// IndentJSON re-indents raw JSON text with two spaces, keeping key order,
// number literals and string escapes exactly as received.
func IndentJSON(raw string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(raw)), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateRunID returns a fresh run identifier
func GenerateRunID() string {
	return uuid.NewString()
}

// CreateCortexRequest creates a Cortex REST request with the standard PAT headers
func CreateCortexRequest(ctx context.Context, method, url string, payload any, token string) (*http.Request, error) {
	var body io.Reader

	if payload != nil {
		payloadBytes, err := MarshalJSON(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	req.Header.Set(core.HeaderAccept, core.ContentTypeEventStream)
	req.Header.Set(core.HeaderSnowflakeTokenType, core.TokenTypeProgrammaticAccess)
	if token != "" {
		req.Header.Set(core.HeaderAuthorization, core.AuthBearerPrefix+token)
	}

	return req, nil
}

// TruncateString truncates string and adds replacement text in the middle
func TruncateString(s string, prefixLen, suffixLen int, replacement string) string {
	if len(s) > prefixLen+suffixLen {
		return s[:prefixLen] + replacement + s[len(s)-suffixLen:]
	}
	return s
}

// MaskSecret keeps only the last four characters of a credential for display
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return TruncateString(secret, 0, 4, "****")
}
