package printer

import (
	"fmt"
	"io"

	"jk80-print/internal/escpos"
)

// PrintError reports which part of a job failed to reach the printer
type PrintError struct {
	Stage string
	Err   error
}

func (e *PrintError) Error() string {
	return fmt.Sprintf("print failed during %s: %v", e.Stage, e.Err)
}

func (e *PrintError) Unwrap() []error {
	return []error{ErrPrintIO, e.Err}
}

// go.bug.st/serial ports drain, buffered writers flush
type flusher interface {
	Flush() error
}

type drainer interface {
	Drain() error
}

// writeJob writes every segment in order, then flushes. The first
// failure aborts the rest of the job.
func writeJob(w io.Writer, job *escpos.Command) error {
	for _, seg := range job.Segments() {
		if len(seg.Data) == 0 {
			continue
		}
		if _, err := w.Write(seg.Data); err != nil {
			return &PrintError{Stage: seg.Name, Err: err}
		}
	}

	var err error
	switch f := w.(type) {
	case flusher:
		err = f.Flush()
	case drainer:
		err = f.Drain()
	}
	if err != nil {
		return &PrintError{Stage: "flush", Err: err}
	}
	return nil
}
