package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Terrain answers what lies under a geoscape position.
type Terrain interface {
	IsWater(pos Position) bool
}

// LandMask is a Terrain backed by land polygons. Everything outside them is water.
type LandMask struct {
	land []geom.Geometry
}

// NewLandMask parses WKT polygons (lon/lat degrees) describing land masses.
func NewLandMask(wkts ...string) (*LandMask, error) {
	m := &LandMask{land: make([]geom.Geometry, 0, len(wkts))}
	for i, wkt := range wkts {
		g, err := geom.UnmarshalWKT(wkt)
		if err != nil {
			return nil, fmt.Errorf("parsing land polygon %d: %w", i, err)
		}
		m.land = append(m.land, g)
	}
	return m, nil
}

// IsWater reports whether pos lies outside every land polygon.
func (m *LandMask) IsWater(pos Position) bool {
	pt := ToPoint(pos).AsGeometry()
	for _, g := range m.land {
		if geom.Intersects(g, pt) {
			return false
		}
	}
	return true
}
