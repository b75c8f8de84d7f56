package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// FlightPath builds a line string through the given positions, in order.
func FlightPath(points ...Position) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("flight path must have at least 2 points, got %d", len(points))
	}

	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// PathPositions returns the vertices of a flight path.
func PathPositions(ls geom.LineString) []Position {
	seq := ls.Coordinates()
	out := make([]Position, seq.Length())
	for i := range out {
		xy := seq.GetXY(i)
		out[i] = Position{X: xy.X, Y: xy.Y}
	}
	return out
}
