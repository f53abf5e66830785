package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ipc"
)

func printSurfaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ivictl surface list [--json]")
	fmt.Fprintln(w, "  ivictl surface show <id>")
	fmt.Fprintln(w, "  ivictl surface visibility <id> on|off")
	fmt.Fprintln(w, "  ivictl surface opacity <id> <0..1>")
	fmt.Fprintln(w, "  ivictl surface rect <id> <x> <y> <width> <height>")
	fmt.Fprintln(w, "  ivictl surface destroy <id>")
}

func runSurface(args []string) int {
	if len(args) == 0 {
		printSurfaceUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runSurfaceList(args[1:])
	case "show":
		return withArgs("surface show", args[1:], 1, func(a []string) error {
			id, err := parseID(a[0])
			if err != nil {
				return err
			}
			return showSurface(ipc.NewClient(), os.Stdout, id)
		})
	case "visibility":
		return withArgs("surface visibility", args[1:], 2, func(a []string) error {
			id, err := parseID(a[0])
			if err != nil {
				return err
			}
			visible, err := parseOnOff(a[1])
			if err != nil {
				return err
			}
			return ipc.NewClient().SetVisibility(id, visible)
		})
	case "opacity":
		return withArgs("surface opacity", args[1:], 2, func(a []string) error {
			id, err := parseID(a[0])
			if err != nil {
				return err
			}
			opacity, err := strconv.ParseFloat(a[1], 64)
			if err != nil {
				return fmt.Errorf("invalid opacity %q: %w", a[1], err)
			}
			return ipc.NewClient().SetOpacity(id, opacity)
		})
	case "rect":
		return withArgs("surface rect", args[1:], 5, func(a []string) error {
			id, err := parseID(a[0])
			if err != nil {
				return err
			}
			var v [4]int32
			for i, s := range a[1:] {
				n, err := strconv.ParseInt(s, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", s, err)
				}
				v[i] = int32(n)
			}
			return ipc.NewClient().SetRectangle(id, v[0], v[1], v[2], v[3])
		})
	case "destroy":
		return withArgs("surface destroy", args[1:], 1, func(a []string) error {
			id, err := parseID(a[0])
			if err != nil {
				return err
			}
			return ipc.NewClient().DestroySurface(id)
		})
	case "help", "-h", "--help":
		printSurfaceUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown surface command: %s\n\n", args[0])
		printSurfaceUsage(os.Stderr)
		return 2
	}
}

func runLayer(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  ivictl layer add <surface-id> <layer-id>")
		fmt.Fprintln(w, "  ivictl layer remove <surface-id> <layer-id>")
	}
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	var op func(c *ipc.Client, surface, layer uint32) error
	switch args[0] {
	case "add":
		op = (*ipc.Client).AddToLayer
	case "remove":
		op = (*ipc.Client).RemoveFromLayer
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown layer command: %s\n\n", args[0])
		usage(os.Stderr)
		return 2
	}

	return withArgs("layer "+args[0], args[1:], 2, func(a []string) error {
		surface, err := parseID(a[0])
		if err != nil {
			return err
		}
		layer, err := parseID(a[1])
		if err != nil {
			return err
		}
		return op(ipc.NewClient(), surface, layer)
	})
}

// withArgs runs fn when exactly n positional arguments were given.
func withArgs(name string, args []string, n int, fn func([]string) error) int {
	if len(args) != n {
		fmt.Fprintf(os.Stderr, "%s takes %d argument(s), got %d\n", name, n, len(args))
		return 2
	}
	if err := fn(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint32(n), nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1", "show":
		return true, nil
	case "off", "false", "0", "hide":
		return false, nil
	}
	return false, fmt.Errorf("invalid visibility %q (want on or off)", s)
}

func runSurfaceList(args []string) int {
	fs := flag.NewFlagSet("surface list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	surfaces, err := ipc.NewClient().ListSurfaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(surfaces); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	writeSurfaceTable(os.Stdout, surfaces)
	return 0
}

func writeSurfaceTable(w io.Writer, surfaces []compositor.SurfaceInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVISIBLE\tOPACITY\tRECT\tFRAMES\tPID\tPROCESS")
	for _, s := range surfaces {
		fmt.Fprintf(tw, "%d\t%t\t%.2f\t%d,%d %dx%d\t%d\t%d\t%s\n",
			s.ID, s.Visible, s.Opacity,
			s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height,
			s.Stats.FrameCount, s.Stats.PID, s.Stats.ProcessName)
	}
	tw.Flush()
}

// surfaceLister is the part of the daemon client showSurface needs.
type surfaceLister interface {
	ListSurfaces() ([]compositor.SurfaceInfo, error)
}

func showSurface(c surfaceLister, w io.Writer, id uint32) error {
	surfaces, err := c.ListSurfaces()
	if err != nil {
		return err
	}
	for _, s := range surfaces {
		if uint32(s.ID) != id {
			continue
		}
		fmt.Fprintf(w, "id:           %d\n", s.ID)
		fmt.Fprintf(w, "bound:        %t\n", s.Bound)
		fmt.Fprintf(w, "visible:      %t\n", s.Visible)
		fmt.Fprintf(w, "opacity:      %.2f\n", s.Opacity)
		fmt.Fprintf(w, "rect:         %d,%d %dx%d\n", s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height)
		fmt.Fprintf(w, "redraw_count: %d\n", s.Stats.RedrawCount)
		fmt.Fprintf(w, "frame_count:  %d\n", s.Stats.FrameCount)
		fmt.Fprintf(w, "update_count: %d\n", s.Stats.UpdateCount)
		fmt.Fprintf(w, "pid:          %d\n", s.Stats.PID)
		fmt.Fprintf(w, "process_name: %s\n", s.Stats.ProcessName)
		return nil
	}
	return fmt.Errorf("surface %d: %w", id, compositor.ErrNotFound)
}

func runScreens(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: ivictl screens")
		return 2
	}
	screens, err := ipc.NewClient().ListScreens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID")
	for _, s := range screens {
		fmt.Fprintf(tw, "%d\t%d\n", s.Order, s.ID)
	}
	tw.Flush()
	return 0
}

func runScreenshot(args []string) int {
	fs := flag.NewFlagSet("screenshot", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ivictl screenshot [template]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture every screen. The screen id is inserted before the template's")
		fmt.Fprintln(os.Stderr, "extension; relative templates resolve against the daemon's working")
		fmt.Fprintln(os.Stderr, "directory. Without a template the configured screenshot_path is used.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().Screenshot(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, f := range data.Files {
		fmt.Println(f)
	}
	if !data.Confirmed {
		fmt.Fprintln(os.Stderr, "note: the compositor does not confirm when the files are written")
	}
	return 0
}
