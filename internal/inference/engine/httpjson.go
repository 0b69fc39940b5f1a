package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/yungbote/idea2sns-backend/internal/platform/httpx"
)

const maxRetryAfter = 5 * time.Second

// DefaultHTTPClient is shared by the raw-HTTP engines. Deadlines come from the caller's context.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// PostJSON sends body as JSON and decodes a 2xx answer into out.
// Every failure comes back as *Error tagged with provider.
func PostJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return NewError(provider, 0, "encode request: "+err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return NewError(provider, 0, "build request: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return FromError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := upstreamMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		e := NewError(provider, resp.StatusCode, msg, nil)
		e.RetryAfter = httpx.RetryAfterDuration(resp, 0, maxRetryAfter)
		return e
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(provider, 502, "decode response: "+err.Error(), err)
	}
	return nil
}

// upstreamMessage pulls error.message out of the common provider error shape, else the raw body.
func upstreamMessage(raw []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return string(raw)
}
