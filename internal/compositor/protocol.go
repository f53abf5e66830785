package compositor

import "github.com/1broseidon/ivictl/internal/wayland"

// Global interface names the session binds.
const (
	OutputInterface     = "wl_output"
	ControllerInterface = "ivi_controller"
	ControllerVersion   = 1
)

// Transport opens connections to a compositor.
type Transport interface {
	// Connect connects to the named display; "" selects the default.
	Connect(display string) (Connection, error)
}

// Connection is an established compositor connection. Requests are
// buffered until Flush or Roundtrip.
type Connection interface {
	// ListenGlobals creates the global registry and routes advertisements
	// to l.
	ListenGlobals(l GlobalListener) error
	// Roundtrip blocks until every request sent so far has been processed
	// and the resulting events dispatched.
	Roundtrip() error
	DispatchPending() error
	// Dispatch blocks until events are available and dispatches them.
	Dispatch() error
	Fd() int
	Flush() error
	Disconnect() error
	BindOutput(name, version uint32) (Output, error)
	BindController(name, version uint32, l ControllerListener) (Controller, error)
}

// Controller is the bound compositor-controller interface.
type Controller interface {
	CreateSurface(id SurfaceID) (SurfaceHandle, error)
	CreateLayer(id LayerID, width, height int32) (LayerHandle, error)
	CommitChanges()
	Release()
}

// SurfaceHandle addresses one remote surface. Requests are fire-and-forget.
type SurfaceHandle interface {
	SetVisibility(visible bool)
	SetOpacity(opacity wayland.Fixed)
	SetDestinationRectangle(x, y, width, height int32)
	Screenshot(filename string)
	SendStats()
	Destroy(destroyScene bool)
}

// LayerHandle addresses one remote layer.
type LayerHandle interface {
	AddSurface(s SurfaceHandle)
	RemoveSurface(s SurfaceHandle)
	Destroy(destroyScene bool)
}

// ScreenHandle addresses one remote screen.
type ScreenHandle interface {
	Screenshot(filename string)
	Release()
}

// Output is a bound display output, kept only so the compositor announces
// its screens.
type Output interface {
	Release()
}

// GlobalListener receives global advertisements.
type GlobalListener interface {
	OnGlobal(name uint32, iface string, version uint32)
	OnGlobalRemove(name uint32)
}

// ControllerListener receives objects and errors pushed by the controller.
type ControllerListener interface {
	OnScreen(id ScreenID, screen ScreenHandle)
	OnLayer(id LayerID)
	OnSurface(id SurfaceID)
	OnSurfaceStats(id SurfaceID, stats SurfaceStats)
	OnError(e ControllerError)
}

// Listener is the full set of events a session handles.
type Listener interface {
	GlobalListener
	ControllerListener
}

// SurfaceStats are the counters reported for a surface on request.
type SurfaceStats struct {
	RedrawCount uint32 `json:"redraw_count"`
	FrameCount  uint32 `json:"frame_count"`
	UpdateCount uint32 `json:"update_count"`
	PID         uint32 `json:"pid"`
	ProcessName string `json:"process_name"`
}

// ObjectType classifies the object a ControllerError refers to.
type ObjectType int32

const (
	ObjectTypeSurface ObjectType = 1
	ObjectTypeLayer   ObjectType = 2
	ObjectTypeScreen  ObjectType = 3
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeSurface:
		return "surface"
	case ObjectTypeLayer:
		return "layer"
	case ObjectTypeScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// ControllerError is an error event sent by the controller.
type ControllerError struct {
	ObjectID   int32
	ObjectType ObjectType
	Code       int32
	Text       string
}
