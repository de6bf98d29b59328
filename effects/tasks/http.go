// Package tasks holds ready-made task computations for runners: an HTTP
// fetch with JSON decoding and a timer.
package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrBadResponse = errors.New("bad response")

// HTTPGet returns a computation fetching url with client (http.DefaultClient
// when nil). A non-2xx status fails with ErrBadResponse. JSON bodies are
// re-indented with tabs; other bodies are returned as is.
func HTTPGet(client *http.Client, url string) func(context.Context) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("%w: %s", ErrBadResponse, resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}

		var indented bytes.Buffer
		if json.Indent(&indented, body, "", "\t") == nil {
			return indented.String(), nil
		}
		return string(body), nil
	}
}

// Decode unmarshals the body fetched by get into T and extracts a result
// with pick.
func Decode[T, R any](
	get func(context.Context) (string, error),
	pick func(T) (R, error),
) func(context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		var zero R
		body, err := get(ctx)
		if err != nil {
			return zero, err
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return zero, fmt.Errorf("decode %T: %w", v, err)
		}
		return pick(v)
	}
}
