package validate

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cortexprobe/internal/core"
	"cortexprobe/internal/util"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed agent_request.schema.json
var agentRequestSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadAgentRequestSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(agentRequestSchema))
	})
	return compiledSchema, schemaErr
}

// ValidateAgentRequest checks the payload against the agent run schema and
// that every tool resource belongs to a declared tool.
func ValidateAgentRequest(req *core.AgentRequest) error {
	if req == nil {
		return core.NewAppError(core.ErrCodeInvalidPayload, "payload is nil", nil)
	}

	schema, err := loadAgentRequestSchema()
	if err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}

	doc, err := util.MarshalJSON(req)
	if err != nil {
		return core.NewAppError(core.ErrCodeInvalidPayload, "payload cannot be encoded", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return core.NewAppError(core.ErrCodeInvalidPayload, "payload validation could not run", err)
	}

	var problems []string
	if !result.Valid() {
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("- %s", desc))
		}
	}
	problems = append(problems, checkToolResources(req)...)

	if len(problems) > 0 {
		return core.NewAppErrorf(core.ErrCodeInvalidPayload, nil, "agent payload is invalid:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

func checkToolResources(req *core.AgentRequest) []string {
	declared := make(map[string]string, len(req.Tools))
	for _, tool := range req.Tools {
		if _, dup := declared[tool.ToolSpec.Name]; dup {
			return []string{fmt.Sprintf("- tools: duplicate tool name %q", tool.ToolSpec.Name)}
		}
		declared[tool.ToolSpec.Name] = tool.ToolSpec.Type
	}

	names := make([]string, 0, len(req.ToolResources))
	for name := range req.ToolResources {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		toolType, ok := declared[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("- tool_resources: %q is not a declared tool", name))
			continue
		}
		resource := req.ToolResources[name]
		switch toolType {
		case core.ToolTypeAnalystTextToSQL:
			if resource.SemanticModelFile == "" {
				problems = append(problems, fmt.Sprintf("- tool_resources: %q needs semantic_model_file", name))
			}
		case core.ToolTypeCortexSearch:
			if resource.Name == "" {
				problems = append(problems, fmt.Sprintf("- tool_resources: %q needs name", name))
			}
		}
	}
	return problems
}
