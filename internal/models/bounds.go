package models

import (
	"fmt"
	"math"
	"strconv"
)

// Zoom limits of the map view. Widening never goes below MinZoom.
const (
	MinZoom = 15
	MaxZoom = 21
)

const (
	tileSize = 256
	// maxLatitude is the Web-Mercator cut-off.
	maxLatitude  = 85.05112878
	maxLongitude = 180.0
)

// Viewport is the pixel size of the map view a Bounds is computed for.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport matches a typical desktop browser window.
var DefaultViewport = Viewport{Width: 1280, Height: 800}

// Bounds is a rectangular query window plus the zoom level it was taken at.
// Values are never mutated: widening and re-centering produce a new Bounds.
type Bounds struct {
	North  float64
	South  float64
	East   float64
	West   float64
	Center Coordinates
	Zoom   int
}

// ClampZoom forces zoom into [MinZoom, MaxZoom].
func ClampZoom(zoom int) int {
	return min(max(zoom, MinZoom), MaxZoom)
}

// NewBounds builds the window a map of the given viewport shows around center at zoom.
func NewBounds(center Coordinates, zoom int, viewport Viewport) Bounds {
	zoom = ClampZoom(zoom)
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}

	worldPx := tileSize * math.Exp2(float64(zoom))
	halfLng := float64(viewport.Width) / 2 / worldPx * 360
	halfMerc := float64(viewport.Height) / 2 / worldPx * 2 * math.Pi
	centerMerc := mercatorY(center.Latitude)

	return Bounds{
		North:  clampLatitude(inverseMercatorY(centerMerc + halfMerc)),
		South:  clampLatitude(inverseMercatorY(centerMerc - halfMerc)),
		East:   clampLongitude(center.Longitude + halfLng),
		West:   clampLongitude(center.Longitude - halfLng),
		Center: center,
		Zoom:   zoom,
	}
}

// NewBoundsFromEdges wraps edges reported by a map view. Zoom is clamped.
func NewBoundsFromEdges(north, south, east, west float64, center Coordinates, zoom int) Bounds {
	return Bounds{
		North:  north,
		South:  south,
		East:   east,
		West:   west,
		Center: center,
		Zoom:   ClampZoom(zoom),
	}
}

// CanWiden reports whether the zoom level is still above MinZoom.
func (b Bounds) CanWiden() bool {
	return b.Zoom > MinZoom
}

// Widen returns the window one zoom level out around the same center: both
// spans are doubled in Mercator space. ok is false when b is already at MinZoom.
func (b Bounds) Widen() (Bounds, bool) {
	if !b.CanWiden() {
		return b, false
	}

	centerMerc := mercatorY(b.Center.Latitude)
	northMerc := centerMerc + 2*(mercatorY(b.North)-centerMerc)
	southMerc := centerMerc + 2*(mercatorY(b.South)-centerMerc)

	return Bounds{
		North:  clampLatitude(inverseMercatorY(northMerc)),
		South:  clampLatitude(inverseMercatorY(southMerc)),
		East:   clampLongitude(b.Center.Longitude + 2*(b.East-b.Center.Longitude)),
		West:   clampLongitude(b.Center.Longitude + 2*(b.West-b.Center.Longitude)),
		Center: b.Center,
		Zoom:   b.Zoom - 1,
	}, true
}

// Contains reports whether point lies inside the window.
func (b Bounds) Contains(point Coordinates) bool {
	return point.Latitude <= b.North && point.Latitude >= b.South &&
		point.Longitude <= b.East && point.Longitude >= b.West
}

// Edges returns the n, s, e, w edges as the text the directory API expects.
func (b Bounds) Edges() (string, string, string, string) {
	return formatDegrees(b.North), formatDegrees(b.South), formatDegrees(b.East), formatDegrees(b.West)
}

func (b Bounds) String() string {
	n, s, e, w := b.Edges()
	return fmt.Sprintf("n=%s s=%s e=%s w=%s center=%s zoom=%d", n, s, e, w, b.Center, b.Zoom)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mercatorY(lat float64) float64 {
	rad := clampLatitude(lat) * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + rad/2))
}

func inverseMercatorY(y float64) float64 {
	return (2*math.Atan(math.Exp(y)) - math.Pi/2) * 180 / math.Pi
}

func clampLatitude(lat float64) float64 {
	return min(max(lat, -maxLatitude), maxLatitude)
}

func clampLongitude(lng float64) float64 {
	return min(max(lng, -maxLongitude), maxLongitude)
}
