package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ipc"
)

const (
	ServerName    = "ivictl"
	ServerVersion = "0.1.0"
)

// DaemonClient is the daemon API the tools call. *ipc.Client implements it.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListSurfaces() ([]compositor.SurfaceInfo, error)
	ListScreens() ([]compositor.ScreenInfo, error)
	SetVisibility(id uint32, visible bool) error
	SetOpacity(id uint32, opacity float64) error
	SetRectangle(id uint32, x, y, width, height int32) error
	AddToLayer(surfaceID, layerID uint32) error
	RemoveFromLayer(surfaceID, layerID uint32) error
	DestroySurface(id uint32) error
	Screenshot(template string) (*ipc.ScreenshotData, error)
}

// Server is the MCP server exposing compositor control as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to the daemon.
func NewServer(client DaemonClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the ivictl daemon's compositor session state and how many surfaces and screens it knows.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_surfaces",
		Description: "List every surface the controller knows with its visibility, opacity, destination rectangle and freshly requested statistics (redraw/frame/update counts, pid, process name).",
	}, s.handleListSurfaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_screens",
		Description: "List the compositor's screens in discovery order.",
	}, s.handleListScreens)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_visibility",
		Description: "Show or hide a surface. The change is committed immediately.",
	}, s.handleSetVisibility)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_opacity",
		Description: "Set a surface's opacity between 0 and 1. The change is committed immediately.",
	}, s.handleSetOpacity)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_rectangle",
		Description: "Set the rectangle a surface is drawn into, in screen coordinates.",
	}, s.handleSetRectangle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_to_layer",
		Description: "Add a surface to a layer's render order.",
	}, s.handleAddToLayer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_from_layer",
		Description: "Remove a surface from a layer's render order. Fails for surfaces the controller does not know.",
	}, s.handleRemoveFromLayer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "destroy_surface",
		Description: "Destroy a surface on the compositor, including its scene. Fails for surfaces the controller does not know.",
	}, s.handleDestroySurface)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screenshot",
		Description: "Ask the compositor to write a screenshot of every screen. Returns the requested file names; the compositor writes them asynchronously and does not confirm completion.",
	}, s.handleScreenshot)
}
