package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "promptwall/1.0"

var errMissingContent = errors.New("provider response missing message content")

// httpStatusError reports a non-2xx provider response.
type httpStatusError struct {
	Status int
	Body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("provider API error (%d): %s", e.Status, e.Body)
}

// postJSON sends a JSON payload and decodes a JSON reply, retrying transient
// failures (transport errors and non-2xx statuses) with exponential backoff.
// prepare customizes headers and query parameters per provider.
func postJSON(ctx context.Context, hc *http.Client, url string, payload, reply any, maxRetries int, prepare func(*http.Request)) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request payload: %w", err)
	}

	backoff := 200 * time.Millisecond
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if prepare != nil {
			prepare(req)
		}

		resp, err := hc.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(reply); err != nil {
				return fmt.Errorf("parsing provider response: %w", err)
			}
			return nil
		}

		var last error
		if err != nil {
			last = err
		} else {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			last = &httpStatusError{Status: resp.StatusCode, Body: string(data)}
		}
		if attempt >= maxRetries {
			return last
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = minDuration(backoff*2, 5*time.Second)
	}
}
