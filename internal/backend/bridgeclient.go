package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// BridgeClient is a Backend served by a remote `mixgraph bridge`.
type BridgeClient struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Backend = (*BridgeClient)(nil)

// NewBridgeClient creates a client for the bridge at baseURL. An empty token
// sends no Authorization header.
func NewBridgeClient(baseURL, token string, timeout time.Duration) *BridgeClient {
	return &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// DeviceVolumeRequest is the body of PUT /v1/devices/volume.
type DeviceVolumeRequest struct {
	Name    string  `json:"name"`
	Volume  float64 `json:"volume"`
	IsInput bool    `json:"isInput"`
}

// AppVolumeRequest is the body of PUT /v1/sessions/:pid/volume.
type AppVolumeRequest struct {
	Volume float64 `json:"volume"`
}

// ErrorResponse is the body of every non-2xx bridge reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (c *BridgeClient) EnumerateDevices(ctx context.Context) ([]AudioDevice, error) {
	var devices []AudioDevice
	if err := c.do(ctx, http.MethodGet, "/v1/devices", nil, &devices, ErrUnknownDevice); err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	return devices, nil
}

func (c *BridgeClient) EnumerateSessions(ctx context.Context) ([]AppSession, error) {
	var sessions []AppSession
	if err := c.do(ctx, http.MethodGet, "/v1/sessions", nil, &sessions, ErrUnknownSession); err != nil {
		return nil, fmt.Errorf("failed to enumerate sessions: %w", err)
	}

	return sessions, nil
}

// GetDeviceVolume returns NaN, not an error, when the bridge answers with
// something other than a JSON number.
func (c *BridgeClient) GetDeviceVolume(ctx context.Context, name string, isInput bool) (float64, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("input", strconv.FormatBool(isInput))

	var raw any
	if err := c.do(ctx, http.MethodGet, "/v1/devices/volume?"+q.Encode(), nil, &raw, ErrUnknownDevice); err != nil {
		return 0, fmt.Errorf("failed to get volume of %q: %w", name, err)
	}

	v, ok := raw.(float64)
	if !ok {
		return math.NaN(), nil
	}

	return v, nil
}

func (c *BridgeClient) SetDeviceVolume(ctx context.Context, name string, volume float64, isInput bool) error {
	body := DeviceVolumeRequest{Name: name, Volume: volume, IsInput: isInput}
	if err := c.do(ctx, http.MethodPut, "/v1/devices/volume", body, nil, ErrUnknownDevice); err != nil {
		return fmt.Errorf("failed to set volume of %q: %w", name, err)
	}

	return nil
}

func (c *BridgeClient) SetAppVolume(ctx context.Context, pid int, volume float64) error {
	path := "/v1/sessions/" + strconv.Itoa(pid) + "/volume"
	if err := c.do(ctx, http.MethodPut, path, AppVolumeRequest{Volume: volume}, nil, ErrUnknownSession); err != nil {
		return fmt.Errorf("failed to set volume of pid %d: %w", pid, err)
	}

	return nil
}

// do performs one request. notFound is the sentinel wrapped on a 404 reply.
func (c *BridgeClient) do(ctx context.Context, method, path string, in, out any, notFound error) error {
	var body io.Reader
	if in != nil {
		data, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er ErrorResponse
		_ = sonic.Unmarshal(data, &er)

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", notFound, er.Error)
		}

		return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, er.Error)
	}

	if out == nil {
		return nil
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return nil
}
