package agent

import (
	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
)

// NewSampleRequest builds the fixed "sales by region" agent run: an analyst,
// a search and a SQL execution tool, answering one user question.
func NewSampleRequest(cfg config.AgentConfig) *core.AgentRequest {
	return &core.AgentRequest{
		Model:               core.DefaultAgentModel,
		ResponseInstruction: core.DefaultResponseInstruction,
		Experimental:        map[string]any{},
		Tools: []core.AgentTool{
			{ToolSpec: core.ToolSpec{Type: core.ToolTypeAnalystTextToSQL, Name: core.AnalystToolName}},
			{ToolSpec: core.ToolSpec{Type: core.ToolTypeCortexSearch, Name: core.SearchToolName}},
			{ToolSpec: core.ToolSpec{Type: core.ToolTypeSQLExec, Name: core.SQLExecToolName}},
		},
		ToolResources: map[string]core.ToolResource{
			core.AnalystToolName: {SemanticModelFile: cfg.SemanticModelFile},
			core.SearchToolName:  {Name: cfg.CortexSearchService},
		},
		ToolChoice: core.ToolChoice{Type: core.ToolChoiceAuto},
		Messages: []core.AgentMessage{
			{
				Role: core.RoleUser,
				Content: []core.ContentBlock{
					{Type: core.ContentBlockTypeText, Text: core.DefaultAgentQuestion},
				},
			},
		},
	}
}
