package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Level is the severity tier of the component that observed an error.
type Level string

const (
	// LevelApp is an error that took the whole application down.
	LevelApp Level = "app"
	// LevelFeature is an error confined to one feature area.
	LevelFeature Level = "feature"
	// LevelPage is an error confined to one page or request.
	LevelPage Level = "page"
)

// Context describes where an error was observed.
type Context struct {
	Level    Level          `json:"level,omitempty"`
	Feature  string         `json:"feature,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Report is one captured error as delivered to a Sink.
type Report struct {
	Message      string    `json:"message"`
	Context      Context   `json:"context"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"userId,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	BuildVersion string    `json:"buildVersion,omitempty"`
}

// Reporter accepts errors for reporting. Implementations must return
// promptly and must not panic.
type Reporter interface {
	CaptureError(err error, c Context)
}

// Sink delivers a batch of reports.
type Sink interface {
	Send(ctx context.Context, batch []Report) error
}

// NoOpSink discards every batch.
type NoOpSink struct{}

// Send implements Sink.
func (NoOpSink) Send(context.Context, []Report) error { return nil }

// ChannelSink forwards reports to a buffered channel, one by one.
type ChannelSink struct {
	reports chan Report
}

// NewChannelSink returns a sink with the given channel capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{reports: make(chan Report, buffer)}
}

// Send implements Sink. It waits for channel space or ctx cancellation.
func (s *ChannelSink) Send(ctx context.Context, batch []Report) error {
	for _, r := range batch {
		select {
		case s.reports <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Reports exposes the receiving side of the channel.
func (s *ChannelSink) Reports() <-chan Report {
	return s.reports
}

// WriterSink writes reports as JSON lines.
type WriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{writer: w}
}

// Send implements Sink.
func (s *WriterSink) Send(_ context.Context, batch []Report) error {
	if s == nil || s.writer == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range batch {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		data = append(data, '\n')
		if _, err := s.writer.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// HTTPSink POSTs batches as a JSON array, optionally gzip-compressed.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	compress bool
}

// NewHTTPSink returns a sink posting to endpoint. A nil client uses a
// client with a 10s timeout.
func NewHTTPSink(endpoint string, client *http.Client, compress bool) *HTTPSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSink{endpoint: endpoint, client: client, compress: compress}
}

// Send implements Sink.
func (s *HTTPSink) Send(ctx context.Context, batch []Report) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode report batch: %w", err)
	}

	var body bytes.Buffer
	if s.compress {
		zw := gzip.NewWriter(&body)
		if _, err := zw.Write(payload); err != nil {
			return fmt.Errorf("compress report batch: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress report batch: %w", err)
		}
	} else {
		body.Write(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.compress {
		req.Header.Set("Content-Encoding", "gzip")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("report endpoint returned status %d", res.StatusCode)
	}
	return nil
}
