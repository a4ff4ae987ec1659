package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/gorilla/websocket"
)

const requestTimeout = 10 * time.Second

type apiClient struct {
	base   *url.URL
	origin string
	http   *http.Client
}

func newAPIClient(addr, origin string) (*apiClient, error) {
	base, err := url.Parse(strings.TrimRight(addr, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server address %q must use http or https", addr)
	}
	if origin == "" {
		origin = base.Scheme + "://" + base.Host
	}
	return &apiClient{
		base:   base,
		origin: origin,
		http:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// requestError carries the server's error body for a failed request.
type requestError struct {
	Status int
	Body   server.ApiError
}

func (e *requestError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (%d): %v", e.Body.Error, e.Status, e.Body.Details)
}

func (c *apiClient) ListChannels(ctx context.Context) ([]channel.Channel, error) {
	var channels []channel.Channel
	err := c.do(ctx, http.MethodGet, "/channels", nil, &channels)
	return channels, err
}

func (c *apiClient) CreateChannel(ctx context.Context, name string) (channel.Channel, error) {
	var created channel.Channel
	err := c.do(ctx, http.MethodPost, "/channels", server.ChannelNameRequest{Name: &name}, &created)
	return created, err
}

func (c *apiClient) RenameChannel(ctx context.Context, id channel.ID, name string) (channel.Channel, error) {
	var renamed channel.Channel
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%d", id), server.ChannelNameRequest{Name: &name}, &renamed)
	return renamed, err
}

func (c *apiClient) DeleteChannel(ctx context.Context, id channel.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%d", id), nil, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		reqErr := &requestError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, &reqErr.Body)
		return reqErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := *c.base
	wsURL.Scheme = "ws"
	if c.base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = "/ws"

	headers := http.Header{}
	headers.Set("Origin", c.origin)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", wsURL.String(), err)
	}
	return conn, nil
}

// Tail prints every frame the server relays until ctx is cancelled or the
// connection drops.
func (c *apiClient) Tail(ctx context.Context, out io.Writer) error {
	names := map[channel.ID]string{}
	if channels, err := c.ListChannels(ctx); err == nil {
		for _, ch := range channels {
			names[ch.ID] = ch.Name
		}
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		_, _ = fmt.Fprintln(out, formatFrame(data, names))
	}
}

// Send posts one chat frame and waits for the server's echo or error frame.
func (c *apiClient) Send(ctx context.Context, out io.Writer, id channel.ID, user, text string) error {
	frame, err := json.Marshal(server.MessageFrame{
		Type:      server.FrameTypeMessage,
		ChannelID: id,
		UserName:  user,
		Text:      text,
	})
	if err != nil {
		return err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(requestTimeout)); err != nil {
		return err
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("wait for delivery: %w", err)
		}
		if bytes.Equal(data, frame) {
			_, _ = fmt.Fprintln(out, formatFrame(data, nil))
			return nil
		}
		var reply server.ErrorFrame
		if json.Unmarshal(data, &reply) == nil && reply.Type == server.FrameTypeError {
			return errors.New(reply.Message)
		}
	}
}
