package core

import (
	"time"
)

// AgentRequest is the body posted to the Cortex agent run endpoint.
type AgentRequest struct {
	Model               string                  `json:"model"`
	ResponseInstruction string                  `json:"response_instruction"`
	Experimental        map[string]any          `json:"experimental"`
	Tools               []AgentTool             `json:"tools"`
	ToolResources       map[string]ToolResource `json:"tool_resources"`
	ToolChoice          ToolChoice              `json:"tool_choice"`
	Messages            []AgentMessage          `json:"messages"`
}

// AgentTool wraps a single tool spec.
type AgentTool struct {
	ToolSpec ToolSpec `json:"tool_spec"`
}

// ToolSpec names a tool and its Cortex type.
type ToolSpec struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ToolResource carries per-tool settings. Analyst tools use SemanticModelFile, search tools use Name.
type ToolResource struct {
	SemanticModelFile string `json:"semantic_model_file,omitempty"`
	Name              string `json:"name,omitempty"`
}

// ToolChoice selects how the agent picks tools.
type ToolChoice struct {
	Type string `json:"type"`
}

// AgentMessage is one conversation turn.
type AgentMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a typed piece of message content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RunRecord describes one finished invocation of a probe command.
type RunRecord struct {
	ID         string        `json:"id"`
	Command    string        `json:"command"`
	Target     string        `json:"target"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	StatusCode int           `json:"status_code,omitempty"`
	Events     int           `json:"events,omitempty"`
	Unparsable int           `json:"unparsable,omitempty"`
	Rows       int           `json:"rows,omitempty"`
	Outcome    string        `json:"outcome"`
	Error      string        `json:"error,omitempty"`
}

// RunHistory is the persisted list of runs, oldest first.
type RunHistory struct {
	Runs []RunRecord `json:"runs"`
}
