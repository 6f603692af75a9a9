package runner

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sink is the caller-visible channel of a streaming session: an ordered
// sequence of fragments followed by one completion signal.
type Sink interface {
	Send(token string) error
	Done() error
}

// SinkError reports that the transport to the caller failed.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "runner: sink: " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }

// WriterSink writes fragments verbatim and a trailing newline on Done.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Send(token string) error {
	_, err := io.WriteString(s.W, token)
	return err
}

func (s WriterSink) Done() error {
	_, err := io.WriteString(s.W, "\n")
	return err
}

// SSESink frames fragments as server-sent events. A fragment containing
// newlines becomes one event with several data lines.
type SSESink struct {
	W io.Writer
}

func (s SSESink) Send(token string) error {
	var b strings.Builder
	for _, line := range strings.Split(token, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(s.W, b.String()); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s SSESink) Done() error {
	if _, err := io.WriteString(s.W, "event: done\ndata: [DONE]\n\n"); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s SSESink) flush() {
	if f, ok := s.W.(http.Flusher); ok {
		f.Flush()
	}
}
