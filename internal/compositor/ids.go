package compositor

import "strconv"

// SurfaceID identifies an IVI surface. It is chosen by the application that
// owns the surface and is unique among live surfaces.
type SurfaceID uint32

// LayerID identifies an IVI layer.
type LayerID uint32

// ScreenID identifies a physical output as numbered by the compositor.
type ScreenID uint32

func (id SurfaceID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id LayerID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id ScreenID) String() string  { return strconv.FormatUint(uint64(id), 10) }
