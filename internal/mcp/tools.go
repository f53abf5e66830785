package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		State:         status.State,
		Display:       status.Display,
		SurfaceCount:  status.SurfaceCount,
		ScreenCount:   status.ScreenCount,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListSurfaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListSurfacesOutput, error) {
	surfaces, err := s.client.ListSurfaces()
	if err != nil {
		return nil, ListSurfacesOutput{}, err
	}
	s.logger.Debug("mcp: listed surfaces", "count", len(surfaces))
	return nil, ListSurfacesOutput{Surfaces: surfaces}, nil
}

func (s *Server) handleListScreens(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListScreensOutput, error) {
	screens, err := s.client.ListScreens()
	if err != nil {
		return nil, ListScreensOutput{}, err
	}
	return nil, ListScreensOutput{Screens: screens}, nil
}

func (s *Server) handleSetVisibility(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVisibilityInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.SetVisibility(args.SurfaceID, args.Visible); err != nil {
		return nil, ActionOutput{}, err
	}
	action := "hidden"
	if args.Visible {
		action = "shown"
	}
	return s.done(args.SurfaceID, action)
}

func (s *Server) handleSetOpacity(_ context.Context, _ *mcpsdk.CallToolRequest, args SetOpacityInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.SetOpacity(args.SurfaceID, args.Opacity); err != nil {
		return nil, ActionOutput{}, err
	}
	return s.done(args.SurfaceID, fmt.Sprintf("opacity %.2f", args.Opacity))
}

func (s *Server) handleSetRectangle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetRectangleInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Width < 0 || args.Height < 0 {
		return nil, ActionOutput{}, fmt.Errorf("width and height must not be negative, got %dx%d", args.Width, args.Height)
	}
	if err := s.client.SetRectangle(args.SurfaceID, args.X, args.Y, args.Width, args.Height); err != nil {
		return nil, ActionOutput{}, err
	}
	return s.done(args.SurfaceID, fmt.Sprintf("rectangle %d,%d %dx%d", args.X, args.Y, args.Width, args.Height))
}

func (s *Server) handleAddToLayer(_ context.Context, _ *mcpsdk.CallToolRequest, args LayerInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.AddToLayer(args.SurfaceID, args.LayerID); err != nil {
		return nil, ActionOutput{}, err
	}
	return s.done(args.SurfaceID, fmt.Sprintf("added to layer %d", args.LayerID))
}

func (s *Server) handleRemoveFromLayer(_ context.Context, _ *mcpsdk.CallToolRequest, args LayerInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.RemoveFromLayer(args.SurfaceID, args.LayerID); err != nil {
		return nil, ActionOutput{}, err
	}
	return s.done(args.SurfaceID, fmt.Sprintf("removed from layer %d", args.LayerID))
}

func (s *Server) handleDestroySurface(_ context.Context, _ *mcpsdk.CallToolRequest, args SurfaceInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.DestroySurface(args.SurfaceID); err != nil {
		return nil, ActionOutput{}, err
	}
	return s.done(args.SurfaceID, "destroyed")
}

func (s *Server) handleScreenshot(_ context.Context, _ *mcpsdk.CallToolRequest, args ScreenshotInput) (*mcpsdk.CallToolResult, ScreenshotOutput, error) {
	data, err := s.client.Screenshot(args.Template)
	if err != nil {
		return nil, ScreenshotOutput{}, err
	}
	s.logger.Info("mcp: screenshot requested", "files", len(data.Files), "confirmed", data.Confirmed)
	return nil, ScreenshotOutput{Files: data.Files, Confirmed: data.Confirmed}, nil
}

func (s *Server) done(id uint32, action string) (*mcpsdk.CallToolResult, ActionOutput, error) {
	s.logger.Info("mcp: surface updated", "surface_id", id, "action", action)
	return nil, ActionOutput{SurfaceID: id, Action: action}, nil
}
