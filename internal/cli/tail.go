package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goodcast/goodapi/pkg/domain"
)

// maxLine bounds a single SSE line.
const maxLine = 1 << 20

// Tail subscribes to the live event feed of the API at baseURL and calls fn
// for every event until ctx is cancelled or the server closes the stream.
func Tail(ctx context.Context, client *http.Client, baseURL string, fn func(domain.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/leafwatch/sse", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect to event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream returned %s", resp.Status)
	}

	err = ReadEvents(resp.Body, fn)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ReadEvents decodes "data:" frames of an SSE stream. Comments, named
// events and payloads that are not events are skipped.
func ReadEvents(r io.Reader, fn func(domain.Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var data strings.Builder
	flush := func() {
		defer data.Reset()
		if data.Len() == 0 {
			return
		}
		var ev domain.Event
		if err := json.Unmarshal([]byte(data.String()), &ev); err != nil || ev.Name == "" {
			slog.Debug("Skipping SSE frame", "data", data.String())
			return
		}
		fn(ev)
	}

	named := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if !named {
				flush()
			}
			data.Reset()
			named = false
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			named = true
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	flush()
	return nil
}
