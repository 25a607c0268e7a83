package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
	"cortexprobe/internal/sse"
	"cortexprobe/internal/util"
)

// Probe runs the sample agent request once and prints everything to Out.
type Probe struct {
	Client *Client
	Out    io.Writer
	Logger core.Logger
	Store  core.RunStore
}

// PrintConfiguration writes the settings in use. The PAT is never printed.
func PrintConfiguration(w io.Writer, cfg config.AgentConfig) {
	_, _ = fmt.Fprintln(w, "Using configuration:")
	_, _ = fmt.Fprintf(w, "%s: %s\n", core.EnvAccountURL, cfg.AccountURL)
	_, _ = fmt.Fprintf(w, "%s: %s\n", core.EnvSemanticModelFile, cfg.SemanticModelFile)
	_, _ = fmt.Fprintf(w, "%s: %s\n", core.EnvCortexSearchService, cfg.CortexSearchService)
}

// Execute sends payload and prints the streamed events. Failures are printed
// and recorded, never returned: the returned record carries the outcome.
func (p *Probe) Execute(ctx context.Context, payload *core.AgentRequest) *core.RunRecord {
	record := &core.RunRecord{
		ID:        util.GenerateRunID(),
		Command:   core.CommandAgent,
		Target:    p.Client.Endpoint(),
		StartedAt: time.Now(),
	}
	defer p.save(record)

	p.Logger.Debug("Agent run %s starting", record.ID)
	_, _ = fmt.Fprintf(p.Out, "Making request to: %s\n", record.Target)
	if pretty, err := util.MarshalIndentJSON(payload); err == nil {
		_, _ = fmt.Fprintf(p.Out, "With payload: %s\n", pretty)
	}

	result, err := p.Client.Run(ctx, payload, func(*Stream) {
		_, _ = fmt.Fprintln(p.Out, "Successfully connected to the API")
	}, sse.NewPrinter(p.Out))
	record.StatusCode = result.StatusCode
	record.Events = result.Summary.Events
	record.Unparsable = result.Summary.Unparsable
	record.Duration = result.Duration
	if err != nil {
		p.fail(record, err)
		return record
	}

	if result.Summary.Done {
		record.Outcome = core.OutcomeCompleted
	} else {
		record.Outcome = core.OutcomeStreamEnded
		p.Logger.Warn("Stream closed without %s", core.StreamChunkDoneMessage)
	}
	return record
}

func (p *Probe) fail(record *core.RunRecord, err error) {
	record.Duration = time.Since(record.StartedAt)
	record.Error = err.Error()

	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		record.StatusCode = apiErr.StatusCode
		record.Outcome = core.OutcomeHTTPError
		ReportAPIError(p.Out, apiErr)
		p.Logger.Error("Agent run %s rejected with status %d", record.ID, apiErr.StatusCode)
		return
	}

	record.Outcome = core.OutcomeFailed
	_, _ = fmt.Fprintf(p.Out, "Error occurred: %v\n", err)
	p.Logger.Error("Agent run %s failed: %v", record.ID, err)
}

func (p *Probe) save(record *core.RunRecord) {
	if p.Store == nil {
		return
	}
	if err := p.Store.AppendRun(record); err != nil {
		p.Logger.Warn("Failed to record run %s: %v", record.ID, err)
	}
}

// ReportAPIError prints the status and the structured error body when it was
// JSON, otherwise the raw text.
func ReportAPIError(w io.Writer, apiErr *core.APIError) {
	_, _ = fmt.Fprintf(w, "Error %d:\n", apiErr.StatusCode)
	if apiErr.Structured() {
		if pretty, err := util.IndentJSON(apiErr.Raw); err == nil {
			_, _ = fmt.Fprintln(w, string(pretty))
			return
		}
	}
	_, _ = fmt.Fprintln(w, apiErr.Raw)
}
