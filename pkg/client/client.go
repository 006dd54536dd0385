// Package client talks to a pricematrix server and satisfies session.Backend,
// so an editor can work against a remote matrix.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/session"
)

const (
	loadPath = "/api/pricing"
	savePath = "/api/save-pricing"

	maxResponseSize = 1 << 20
)

// Client is an HTTP session.Backend.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ session.Backend = (*Client)(nil)

// New returns a Client for baseURL (e.g. "http://127.0.0.1:8080"). A nil
// httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// LoadMatrix fetches the stored matrix.
func (c *Client) LoadMatrix(ctx context.Context) (matrix.Matrix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+loadPath, nil)
	if err != nil {
		return nil, apperrors.InternalError("build load request", err)
	}
	return c.do(req)
}

// SaveMatrix posts m and returns the matrix the server stored.
func (c *Client) SaveMatrix(ctx context.Context, m matrix.Matrix) (matrix.Matrix, error) {
	body, err := matrix.Encode(m)
	if err != nil {
		return nil, apperrors.InternalError("encode matrix", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+savePath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.InternalError("build save request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (matrix.Matrix, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.IOError(fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperrors.IOError("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp.StatusCode, data)
	}

	m, err := matrix.Decode(data)
	if err != nil {
		return nil, apperrors.ParseError("invalid response body", err)
	}
	return m, nil
}

// responseError prefers the structured body and falls back to the status.
func responseError(status int, data []byte) error {
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return apperrors.FromResponse(body).WithField("status", status)
	}

	msg := http.StatusText(status)
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	var out *apperrors.Error
	switch {
	case status == http.StatusNotFound:
		out = apperrors.NotFoundError(msg)
	case status == http.StatusBadRequest:
		out = apperrors.ParseError(msg, nil)
	case status == http.StatusUnprocessableEntity:
		out = apperrors.ValidationError(msg)
	case status >= 500:
		out = apperrors.IOError(msg, nil)
	default:
		out = apperrors.InternalError(msg, nil)
	}
	return out.WithField("status", status)
}
