package mcp

import "github.com/1broseidon/ivictl/internal/compositor"

// SurfaceInput selects a surface by its ivi-id.
type SurfaceInput struct {
	SurfaceID uint32 `json:"surface_id" jsonschema:"required,ivi-id of the surface"`
}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	State         string `json:"state"`
	Display       string `json:"display,omitempty"`
	SurfaceCount  int    `json:"surface_count"`
	ScreenCount   int    `json:"screen_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ListSurfacesOutput is the output for the list_surfaces tool.
type ListSurfacesOutput struct {
	Surfaces []compositor.SurfaceInfo `json:"surfaces"`
}

// ListScreensOutput is the output for the list_screens tool.
type ListScreensOutput struct {
	Screens []compositor.ScreenInfo `json:"screens"`
}

// SetVisibilityInput is the input for the set_visibility tool.
type SetVisibilityInput struct {
	SurfaceID uint32 `json:"surface_id" jsonschema:"required,ivi-id of the surface"`
	Visible   bool   `json:"visible" jsonschema:"required,Whether the surface is shown"`
}

// SetOpacityInput is the input for the set_opacity tool.
type SetOpacityInput struct {
	SurfaceID uint32  `json:"surface_id" jsonschema:"required,ivi-id of the surface"`
	Opacity   float64 `json:"opacity" jsonschema:"required,Opacity between 0 (transparent) and 1 (opaque). Values outside the range are clamped."`
}

// SetRectangleInput is the input for the set_rectangle tool.
type SetRectangleInput struct {
	SurfaceID uint32 `json:"surface_id" jsonschema:"required,ivi-id of the surface"`
	X         int32  `json:"x" jsonschema:"Left edge in screen coordinates"`
	Y         int32  `json:"y" jsonschema:"Top edge in screen coordinates"`
	Width     int32  `json:"width" jsonschema:"required,Width in pixels"`
	Height    int32  `json:"height" jsonschema:"required,Height in pixels"`
}

// LayerInput is the input for the add_to_layer and remove_from_layer tools.
type LayerInput struct {
	SurfaceID uint32 `json:"surface_id" jsonschema:"required,ivi-id of the surface"`
	LayerID   uint32 `json:"layer_id" jsonschema:"required,ivi-id of the layer"`
}

// ScreenshotInput is the input for the screenshot tool.
type ScreenshotInput struct {
	Template string `json:"template,omitempty" jsonschema:"File name template; the screen id is inserted before the extension. Defaults to the daemon's screenshot_path."`
}

// ScreenshotOutput is the output for the screenshot tool.
type ScreenshotOutput struct {
	Files []string `json:"files"`
	// Confirmed is false when the compositor was asked to write the files
	// but gave no acknowledgement.
	Confirmed bool `json:"confirmed"`
}

// ActionOutput is the output of tools that change a surface.
type ActionOutput struct {
	SurfaceID uint32 `json:"surface_id"`
	Action    string `json:"action"`
}
