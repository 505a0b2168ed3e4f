package investec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type response struct {
	StatusCode int
	Status     string // status text without the code, e.g. "Not Found"
	Body       []byte
}

// do sends an authenticated JSON request and decodes a 200 body into target
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload, target any) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return err
	}

	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return fmt.Errorf("%s: failed to build endpoint: %w", op, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, op, method, endpoint, body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
	})
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: resp.Body}
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

// send executes one request under the client timeout and reads the whole body
func (c *Client) send(ctx context.Context, op, method, endpoint string, body io.Reader, prepare func(*http.Request)) (*response, error) {
	ctx, finish := c.instrument(ctx, op, method)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, body)
	if err != nil {
		finish(0, err)
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	prepare(req)

	c.logger.DebugContext(ctx, "sending request",
		"component", "investec_client",
		"op", op,
		"method", method,
		"path", req.URL.Path,
	)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(ctx, reqCtx, op, "failed to execute request", err)
		finish(0, err)
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		err = c.transportError(ctx, reqCtx, op, "failed to read response body", err)
		finish(httpResp.StatusCode, err)
		return nil, err
	}

	resp := &response{
		StatusCode: httpResp.StatusCode,
		Status:     statusText(httpResp),
		Body:       data,
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "non-200 response",
			"component", "investec_client",
			"op", op,
			"status", resp.StatusCode,
			"status_text", resp.Status,
		)
	}
	finish(resp.StatusCode, nil)
	return resp, nil
}

// transportError maps a failed round trip onto TimeoutError when the client
// timeout fired, and leaves caller cancellation as a plain wrapped error
func (c *Client) transportError(parent, reqCtx context.Context, op, msg string, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Timeout: c.timeout, Err: context.DeadlineExceeded}
	}
	var netErr net.Error
	if parent.Err() == nil && errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Timeout: c.timeout, Err: err}
	}
	return fmt.Errorf("%s: %s: %w", op, msg, err)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
