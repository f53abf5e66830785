package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/runtimepath"
)

// requestTimeout bounds how long a request waits for the daemon's session
// goroutine.
const requestTimeout = 5 * time.Second

// Controller executes commands against the compositor session. The daemon
// implements it by running each call on the goroutine that owns the session.
type Controller interface {
	Status(ctx context.Context) (*StatusData, error)
	ListSurfaces(ctx context.Context) ([]compositor.SurfaceInfo, error)
	ListScreens(ctx context.Context) ([]compositor.ScreenInfo, error)
	SetVisibility(ctx context.Context, id compositor.SurfaceID, visible bool) error
	SetOpacity(ctx context.Context, id compositor.SurfaceID, opacity float64) error
	SetRectangle(ctx context.Context, id compositor.SurfaceID, rect compositor.Rect) error
	AddToLayer(ctx context.Context, surface compositor.SurfaceID, layer compositor.LayerID) error
	RemoveFromLayer(ctx context.Context, surface compositor.SurfaceID, layer compositor.LayerID) error
	DestroySurface(ctx context.Context, id compositor.SurfaceID) error
	Screenshot(ctx context.Context, template string) (*ScreenshotData, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(ctrl Controller, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves a single newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandGetStatus:
		return respond(s.ctrl.Status(ctx))
	case CommandListSurfaces:
		surfaces, err := s.ctrl.ListSurfaces(ctx)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(&SurfacesData{Surfaces: surfaces}, nil)
	case CommandListScreens:
		screens, err := s.ctrl.ListScreens(ctx)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(&ScreensData{Screens: screens}, nil)
	case CommandSetVisibility:
		var p VisibilityPayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		return respondErr(s.ctrl.SetVisibility(ctx, compositor.SurfaceID(p.SurfaceID), p.Visible))
	case CommandSetOpacity:
		var p OpacityPayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		return respondErr(s.ctrl.SetOpacity(ctx, compositor.SurfaceID(p.SurfaceID), p.Opacity))
	case CommandSetRectangle:
		var p RectanglePayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		rect := compositor.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
		return respondErr(s.ctrl.SetRectangle(ctx, compositor.SurfaceID(p.SurfaceID), rect))
	case CommandAddToLayer:
		var p LayerPayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		return respondErr(s.ctrl.AddToLayer(ctx, compositor.SurfaceID(p.SurfaceID), compositor.LayerID(p.LayerID)))
	case CommandRemoveFromLayer:
		var p LayerPayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		return respondErr(s.ctrl.RemoveFromLayer(ctx, compositor.SurfaceID(p.SurfaceID), compositor.LayerID(p.LayerID)))
	case CommandDestroySurface:
		var p SurfacePayload
		if resp := decodePayload(req, &p); resp != nil {
			return resp
		}
		return respondErr(s.ctrl.DestroySurface(ctx, compositor.SurfaceID(p.SurfaceID)))
	case CommandScreenshot:
		var p ScreenshotPayload
		if len(req.Payload) > 0 {
			if resp := decodePayload(req, &p); resp != nil {
				return resp
			}
		}
		return respond(s.ctrl.Screenshot(ctx, p.Template))
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(req *Request, out any) *Response {
	if len(req.Payload) == 0 {
		return NewErrorResponse(fmt.Sprintf("%s requires a payload", req.Command))
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	return nil
}

func respond(data any, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func respondErr(err error) *Response {
	return respond(nil, err)
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
