package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		// Slightly above the server's request timeout so its error reply
		// arrives before the client gives up.
		timeout: requestTimeout + time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response
// data into out when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListSurfaces refreshes surface statistics and returns every known surface.
func (c *Client) ListSurfaces() ([]compositor.SurfaceInfo, error) {
	var data SurfacesData
	if err := c.call(CommandListSurfaces, nil, &data); err != nil {
		return nil, err
	}
	return data.Surfaces, nil
}

func (c *Client) ListScreens() ([]compositor.ScreenInfo, error) {
	var data ScreensData
	if err := c.call(CommandListScreens, nil, &data); err != nil {
		return nil, err
	}
	return data.Screens, nil
}

func (c *Client) SetVisibility(id uint32, visible bool) error {
	return c.call(CommandSetVisibility, VisibilityPayload{SurfaceID: id, Visible: visible}, nil)
}

func (c *Client) SetOpacity(id uint32, opacity float64) error {
	return c.call(CommandSetOpacity, OpacityPayload{SurfaceID: id, Opacity: opacity}, nil)
}

func (c *Client) SetRectangle(id uint32, x, y, width, height int32) error {
	return c.call(CommandSetRectangle, RectanglePayload{SurfaceID: id, X: x, Y: y, Width: width, Height: height}, nil)
}

func (c *Client) AddToLayer(surfaceID, layerID uint32) error {
	return c.call(CommandAddToLayer, LayerPayload{SurfaceID: surfaceID, LayerID: layerID}, nil)
}

func (c *Client) RemoveFromLayer(surfaceID, layerID uint32) error {
	return c.call(CommandRemoveFromLayer, LayerPayload{SurfaceID: surfaceID, LayerID: layerID}, nil)
}

func (c *Client) DestroySurface(id uint32) error {
	return c.call(CommandDestroySurface, SurfacePayload{SurfaceID: id}, nil)
}

// Screenshot asks the daemon to capture every screen. An empty template
// uses the daemon's configured screenshot_path.
func (c *Client) Screenshot(template string) (*ScreenshotData, error) {
	var data ScreenshotData
	if err := c.call(CommandScreenshot, ScreenshotPayload{Template: template}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
