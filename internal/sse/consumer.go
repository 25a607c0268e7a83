// Package sse consumes the line-oriented event stream returned by the Cortex agent endpoint.
package sse

import (
	"bufio"
	"context"
	"io"
	"strings"

	"cortexprobe/internal/core"
	"cortexprobe/internal/util"
)

// EventKind classifies a consumed data line.
type EventKind int

const (
	// EventJSON is a data line whose payload decoded as JSON.
	EventJSON EventKind = iota
	// EventUnparsable is a data line whose payload was not valid JSON.
	EventUnparsable
	// EventDone is the [DONE] sentinel. Nothing is read after it.
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventJSON:
		return "json"
	case EventUnparsable:
		return "unparsable"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one data line from the stream.
type Event struct {
	Kind EventKind
	Data any
	Raw  string
}

// Handler receives events in stream order. Returning an error stops consumption.
type Handler func(event Event) error

// Summary counts what a consumption pass saw.
type Summary struct {
	Events     int
	Unparsable int
	Done       bool
}

// Consume reads body line by line until the [DONE] sentinel, end of stream,
// a read error, or a handler error. Blank lines and lines without the data
// prefix are skipped. A payload that is not JSON is reported as EventUnparsable
// and does not stop the stream.
func Consume(ctx context.Context, body io.Reader, logger core.Logger, handler Handler) (Summary, error) {
	var summary Summary

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), core.MaxScannerBufferSize)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, core.StreamChunkPrefix) {
			logger.Debug("Ignoring non-data line: %s", util.TruncateString(line, 60, 20, "..."))
			continue
		}

		data := strings.TrimPrefix(line, core.StreamChunkPrefix)
		if data == core.StreamChunkDoneMessage {
			summary.Done = true
			if err := handler(Event{Kind: EventDone, Raw: data}); err != nil {
				return summary, err
			}
			return summary, nil
		}

		event := Event{Raw: data}
		if decoded, err := util.UnmarshalAny(data); err != nil {
			logger.Debug("Stream line is not JSON: %v", err)
			event.Kind = EventUnparsable
			summary.Unparsable++
		} else {
			event.Kind = EventJSON
			event.Data = decoded
			summary.Events++
		}

		if err := handler(event); err != nil {
			return summary, err
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, core.NewAppError(core.ErrCodeStreamRead, "stream read error", err)
	}

	return summary, nil
}
