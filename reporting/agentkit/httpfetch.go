package agentkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/jayvdb/platform-engine/logctx"
)

// FetchWithRetry POSTs (or otherwise sends) body to url with the given
// headers, retrying transient failures up to tries times with
// exponential backoff. A non-2xx response is treated as a retryable
// failure, same as the source's fetch_with_retry wrapping Tornado's
// AsyncHTTPClient. Shared by every agent under reporting/agents.
func FetchWithRetry(ctx context.Context, client *http.Client, tries int, method, url string, body []byte, headers map[string]string) error {
	if client == nil {
		client = http.DefaultClient
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(tries-1)), ctx)
	logger := slog.New(slog.NewTextHandler(logctx.Writer(ctx), nil))

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			logger.Warn("reporting agent request failed", slog.String("url", url), slog.Int("attempt", attempt), slog.String("err", err.Error()))
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		retryErr := fmt.Errorf("reporting agent request to %s: status %d", url, resp.StatusCode)
		logger.Warn("reporting agent request rejected", slog.String("url", url), slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
		return retryErr
	}, b)
}
