package sse

import (
	"fmt"
	"io"

	"cortexprobe/internal/util"
)

// NewPrinter returns a Handler that writes each event to w in the console format
// used by the agent command.
func NewPrinter(w io.Writer) Handler {
	return func(event Event) error {
		switch event.Kind {
		case EventDone:
			_, err := fmt.Fprintln(w, "Stream completed")
			return err
		case EventUnparsable:
			_, err := fmt.Fprintf(w, "Could not parse line as JSON: %s\n", event.Raw)
			return err
		default:
			pretty, err := util.IndentJSON(event.Raw)
			if err != nil {
				pretty, err = util.MarshalIndentJSON(event.Data)
			}
			if err != nil {
				_, err = fmt.Fprintf(w, "Could not parse line as JSON: %s\n", event.Raw)
				return err
			}
			_, err = fmt.Fprintf(w, "Received data: %s\n", pretty)
			return err
		}
	}
}
