package mockserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"cortexprobe/internal/core"
	"cortexprobe/internal/util"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func samplePayload(t *testing.T) []byte {
	t.Helper()
	req := core.AgentRequest{
		Model:        core.DefaultAgentModel,
		Experimental: map[string]any{},
		Tools: []core.AgentTool{
			{ToolSpec: core.ToolSpec{Type: core.ToolTypeCortexSearch, Name: core.SearchToolName}},
		},
		ToolResources: map[string]core.ToolResource{core.SearchToolName: {Name: "sales_search"}},
		ToolChoice:    core.ToolChoice{Type: core.ToolChoiceAuto},
		Messages: []core.AgentMessage{
			{Role: core.RoleUser, Content: []core.ContentBlock{{Type: core.ContentBlockTypeText, Text: "hi"}}},
		},
	}
	body, err := util.MarshalJSON(req)
	require.NoError(t, err)
	return body
}

func newAgentRequest(t *testing.T, body []byte, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, core.CortexAgentRunPath, bytes.NewReader(body))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	req.Header.Set(core.HeaderAccept, core.ContentTypeEventStream)
	req.Header.Set(core.HeaderSnowflakeTokenType, core.TokenTypeProgrammaticAccess)
	if token != "" {
		req.Header.Set(core.HeaderAuthorization, core.AuthBearerPrefix+token)
	}
	return req
}

func TestHealth(t *testing.T) {
	router := NewRouter(Options{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAgentRun_StreamsDefaultLines(t *testing.T) {
	router := NewRouter(Options{Token: "pat"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, samplePayload(t), "pat"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, core.ContentTypeEventStream, w.Header().Get(core.HeaderContentType))
	assert.Equal(t, strings.Join(DefaultLines(), "\n")+"\n", w.Body.String())
}

func TestAgentRun_OnlyExactPath(t *testing.T) {
	router := NewRouter(Options{})

	for _, path := range []string{"/api/v2/cortex/agentXYZ", "/api/v2/cortex/agent:walk", "/api/v2/cortex/agent"} {
		t.Run(path, func(t *testing.T) {
			req := newAgentRequest(t, samplePayload(t), "pat")
			req.URL.Path = path
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.NotContains(t, w.Body.String(), "data:")
		})
	}
}

func TestAgentRun_CustomLines(t *testing.T) {
	router := NewRouter(Options{Lines: []string{`data: {"a":1}`, core.StreamDoneLine}})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, samplePayload(t), "anything"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data: {\"a\":1}\ndata: [DONE]\n", w.Body.String())
}

func TestAgentRun_Unauthorized(t *testing.T) {
	tests := []struct {
		name  string
		token string
		setup func(req *http.Request)
	}{
		{"missing token", "", nil},
		{"wrong token", "other", nil},
		{"wrong token type", "pat", func(req *http.Request) { req.Header.Set(core.HeaderSnowflakeTokenType, "OAUTH") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Options{Token: "pat"})
			req := newAgentRequest(t, samplePayload(t), tt.token)
			if tt.setup != nil {
				tt.setup(req)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]any
			require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "390303", body["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestAgentRun_BadBody(t *testing.T) {
	router := NewRouter(Options{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, []byte("{not json"), "pat"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, []byte(`{"model":""}`), "pat"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PAYLOAD")
}

func TestAgentRun_ForcedStatus(t *testing.T) {
	router := NewRouter(Options{Status: http.StatusTooManyRequests})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, samplePayload(t), "pat"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too Many Requests")

	router = NewRouter(Options{Status: http.StatusBadGateway, ErrorBody: "upstream unavailable"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, newAgentRequest(t, samplePayload(t), "pat"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream unavailable", w.Body.String())
}
