// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// UnexpectedStatusError occurs when the receiving endpoint responds
// with anything other than 200 OK. The game client treats every such
// response as a failed send, so the Sender does too.
type UnexpectedStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e UnexpectedStatusError) Error() string {
	return fmt.Sprintf("client: unexpected response status code: %d", e.StatusCode)
}

type senderOptions struct {
	httpClient *http.Client
}

// SenderOption configures a [Sender].
type SenderOption func(*senderOptions)

// SendWith overrides the http.Client used for delivering snapshots.
func SendWith(c *http.Client) SenderOption {
	return func(so *senderOptions) {
		so.httpClient = c
	}
}

// Sender delivers game state snapshots to an HTTP endpoint using the
// same request shape the game client uses, so any game state listener
// can receive them.
type Sender struct {
	http *http.Client
	uri  string
}

// NewSender returns a Sender delivering snapshots to uri. The default
// client retries failed sends with backoff; use [SendWith] together
// with [New] to customize that behaviour.
func NewSender(uri string, opts ...SenderOption) *Sender {
	so := &senderOptions{
		httpClient: New(RetryRequests()),
	}
	for _, opt := range opts {
		opt(so)
	}
	return &Sender{
		http: so.httpClient,
		uri:  uri,
	}
}

// Send marshals v, typically a components.GameState, and delivers it.
func (s *Sender) Send(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SendRaw(ctx, b)
}

// SendRaw delivers one raw snapshot payload as-is.
func (s *Sender) SendRaw(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uri, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across snapshots.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return UnexpectedStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
