package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxLoggedBody = 2048

// Bodies under this prefix carry passwords and tokens and are never logged.
const authPathPrefix = "/api/auth/"

// loggingTransport logs each gateway call at debug level, and the request
// and response bodies when enabled.
type loggingTransport struct {
	base      http.RoundTripper
	logger    *slog.Logger
	logBodies bool
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	}

	logBodies := t.logBodies && !strings.HasPrefix(req.URL.Path, authPathPrefix)

	if logBodies && req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		attrs = append(attrs, slog.String("request_body", truncate(data)))
	}

	resp, err := t.base.RoundTrip(req)
	attrs = append(attrs, slog.Duration("duration", time.Since(start)))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		t.logger.LogAttrs(req.Context(), slog.LevelDebug, "gateway call failed", attrs...)
		return nil, err
	}
	attrs = append(attrs, slog.Int("status", resp.StatusCode))

	if logBodies {
		data, rerr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if rerr != nil {
			return nil, rerr
		}
		resp.Body = io.NopCloser(bytes.NewReader(data))
		attrs = append(attrs, slog.String("response_body", truncate(data)))
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelWarn
	}
	t.logger.LogAttrs(req.Context(), level, "gateway call", attrs...)
	return resp, nil
}

func truncate(data []byte) string {
	if len(data) > maxLoggedBody {
		return string(data[:maxLoggedBody]) + "..."
	}
	return string(data)
}
