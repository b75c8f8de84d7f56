package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Geoscape positions are kept in degrees (longitude, latitude). Anything that
// leaves the process (database rows, websocket feed) is converted with ToPoint
// or ToWebMercator so the stored geometry keeps the WKB format.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position is a location on the geoscape. X is the longitude, Y the latitude, both in degrees.
type Position struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// Shift moves the position by d degrees along both axes.
func (p Position) Shift(d float64) Position {
	return Position{X: p.X + d, Y: p.Y + d}
}

// ParsePosition parses a string in the format "long,lat" into a Position.
func ParsePosition(coords string) (Position, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return Position{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return Position{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return Position{}, ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 {
		return Position{}, ErrInvalidCoordinates
	}
	return Position{X: long, Y: lat}, nil
}

// vec3 is a point on the unit sphere.
type vec3 [3]float64

func toVec(p Position) vec3 {
	lon := p.X * math.Pi / 180
	lat := p.Y * math.Pi / 180
	return vec3{math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)}
}

func toPosition(v vec3) Position {
	lat := math.Asin(clamp(v[2], -1, 1))
	lon := math.Atan2(v[1], v[0])
	return Position{X: lon * 180 / math.Pi, Y: lat * 180 / math.Pi}
}

func cross(a, b vec3) vec3 {
	return vec3{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func dot(a, b vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Distance returns the great-circle distance between two positions, in degrees of arc.
func Distance(a, b Position) float64 {
	return math.Acos(clamp(dot(toVec(a), toVec(b)), -1, 1)) * 180 / math.Pi
}

// AngleOfPath returns the initial heading (degrees, 0 = north, clockwise) of the
// great circle from start toward end.
func AngleOfPath(start, end Position) float64 {
	lat1 := start.Y * math.Pi / 180
	lat2 := end.Y * math.Pi / 180
	dLon := (end.X - start.X) * math.Pi / 180
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	angle := math.Atan2(y, x) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return angle
}

// NextPointInPath moves from start toward end by movement degrees along the great
// circle through both points and returns the new position with the heading used.
// Movement that overshoots end is not clamped.
func NextPointInPath(movement float64, start, end Position) (Position, float64) {
	angle := AngleOfPath(start, end)
	s, e := toVec(start), toVec(end)
	axis := cross(s, e)
	norm := math.Sqrt(dot(axis, axis))
	if norm < 1e-12 {
		// start and end are the same point or antipodal: no unique great circle
		return end, angle
	}
	axis = vec3{axis[0] / norm, axis[1] / norm, axis[2] / norm}

	// Rodrigues rotation of s around axis by movement degrees
	theta := movement * math.Pi / 180
	c, sn := math.Cos(theta), math.Sin(theta)
	k := cross(axis, s)
	kd := dot(axis, s)
	var r vec3
	for i := range r {
		r[i] = s[i]*c + k[i]*sn + axis[i]*kd*(1-c)
	}
	return toPosition(r), angle
}

// ToPoint converts a position to a simplefeatures point (SRID 4326 coordinates).
func ToPoint(p Position) geom.Point {
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: p.X, Y: p.Y},
			Type: geom.DimXY,
		},
	)
}

// ToWebMercator converts a position to an EPSG:3857 point.
func ToWebMercator(p Position) (geom.Point, error) {
	if p.Y < -90 || p.Y > 90 || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(p.X, p.Y, 0)
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Type: geom.DimXY,
		},
	), nil
}

// FromPoint converts a simplefeatures point back into a position.
// An empty point yields the zero position and false.
func FromPoint(pt geom.Point) (Position, bool) {
	coords, ok := pt.Coordinates()
	if !ok {
		return Position{}, false
	}
	return Position{X: coords.X, Y: coords.Y}, true
}
