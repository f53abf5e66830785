package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/ivictl/internal/compositor"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandListSurfaces    CommandType = "LIST_SURFACES"
	CommandListScreens     CommandType = "LIST_SCREENS"
	CommandSetVisibility   CommandType = "SET_VISIBILITY"
	CommandSetOpacity      CommandType = "SET_OPACITY"
	CommandSetRectangle    CommandType = "SET_RECTANGLE"
	CommandAddToLayer      CommandType = "ADD_TO_LAYER"
	CommandRemoveFromLayer CommandType = "REMOVE_FROM_LAYER"
	CommandDestroySurface  CommandType = "DESTROY_SURFACE"
	CommandScreenshot      CommandType = "SCREENSHOT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	State         string `json:"state"`
	Display       string `json:"display,omitempty"`
	SurfaceCount  int    `json:"surface_count"`
	ScreenCount   int    `json:"screen_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

type SurfacesData struct {
	Surfaces []compositor.SurfaceInfo `json:"surfaces"`
}

type ScreensData struct {
	Screens []compositor.ScreenInfo `json:"screens"`
}

type SurfacePayload struct {
	SurfaceID uint32 `json:"surface_id"`
}

type VisibilityPayload struct {
	SurfaceID uint32 `json:"surface_id"`
	Visible   bool   `json:"visible"`
}

type OpacityPayload struct {
	SurfaceID uint32  `json:"surface_id"`
	Opacity   float64 `json:"opacity"`
}

type RectanglePayload struct {
	SurfaceID uint32 `json:"surface_id"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
}

type LayerPayload struct {
	SurfaceID uint32 `json:"surface_id"`
	LayerID   uint32 `json:"layer_id"`
}

type ScreenshotPayload struct {
	Template string `json:"template,omitempty"` // empty uses the configured screenshot_path
}

// ScreenshotData lists the files the compositor was asked to write.
// Confirmed is false when the compositor gave no completion signal.
type ScreenshotData struct {
	Files     []string `json:"files"`
	Confirmed bool     `json:"confirmed"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
