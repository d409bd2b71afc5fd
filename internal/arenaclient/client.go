package arenaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/checkers-arena/pkg/arenadto"
	"github.com/valyala/fasthttp"
)

// APIError is a non-2xx response from the arena server.
type APIError struct {
	Status int
	Body   arenadto.Error
	Raw    string
}

func (e *APIError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("arena api error: status=%d code=%s message=%s", e.Status, e.Body.Code, e.Body.Message)
	}
	return fmt.Sprintf("arena api error: status=%d body=%s", e.Status, truncate(e.Raw, 512))
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListRooms(ctx context.Context) ([]arenadto.RoomInfo, error) {
	var out []arenadto.RoomInfo
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/rooms", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Lobby(ctx context.Context) ([]arenadto.LobbyRoom, error) {
	var out []arenadto.LobbyRoom
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/lobby", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRoom reserves a room without taking a seat. Not retried.
func (c *Client) CreateRoom(ctx context.Context, name, nickname string) (*arenadto.CreateRoomResponse, error) {
	req := arenadto.CreateRoomRequest{RoomName: name, PlayerNickname: nickname}
	var resp arenadto.CreateRoomResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/rooms/create", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Room(ctx context.Context, roomID string) (*arenadto.RoomInfo, error) {
	var info arenadto.RoomInfo
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/rooms/"+url.PathEscape(roomID), nil, &info, true); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) RoomExists(ctx context.Context, roomID string) (bool, error) {
	var ok bool
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/rooms/"+url.PathEscape(roomID)+"/exists", nil, &ok, true); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Client) RoomState(ctx context.Context, roomID string) (*arenadto.GameState, error) {
	var st arenadto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/rooms/"+url.PathEscape(roomID)+"/state", nil, &st, true); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) RecentGames(ctx context.Context, limit int) ([]arenadto.GameRecord, error) {
	path := "/api/games/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []arenadto.GameRecord
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 0 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := &APIError{Status: status, Raw: string(resp.Body())}
			_ = json.Unmarshal(resp.Body(), &apiErr.Body)
			if attempt == attempts || !shouldRetryStatus(status) {
				return apiErr
			}
			lastErr = apiErr
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
