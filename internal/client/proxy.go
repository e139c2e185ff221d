// Package client talks to the proxy server's chat endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrStatus wraps a non-2xx answer from the proxy.
	ErrStatus = errors.New("proxy returned an error status")
	// ErrMalformedResponse means the body lacks content[0].text.
	ErrMalformedResponse = errors.New("malformed chat response")
)

// maxResponseSize bounds the reply body read from the proxy.
const maxResponseSize = 10 << 20

// Proxy posts messages to POST /api/chat.
type Proxy struct {
	url        string
	httpClient *http.Client
}

// Option customises a Proxy.
type Option func(*Proxy)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Proxy) {
		p.httpClient = c
	}
}

// New returns a client for the endpoint at apiURL.
func New(apiURL string, opts ...Option) *Proxy {
	p := &Proxy{url: apiURL, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL is the endpoint the client posts to.
func (p *Proxy) URL() string {
	return p.url
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Content []struct {
		Text *string `json:"text"`
	} `json:"content"`
}

// Send posts message and returns the text of the first content block.
func (p *Proxy) Send(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "post chat request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return "", errors.Wrapf(ErrStatus, "API Error: %d", resp.StatusCode)
	}

	return parseReply(io.LimitReader(resp.Body, maxResponseSize))
}

func parseReply(r io.Reader) (string, error) {
	var body chatResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if len(body.Content) == 0 {
		return "", errors.Wrap(ErrMalformedResponse, "empty content")
	}
	if body.Content[0].Text == nil {
		return "", errors.Wrap(ErrMalformedResponse, "first content block has no text")
	}
	return *body.Content[0].Text, nil
}
