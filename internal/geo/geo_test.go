package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition_Valid(t *testing.T) {
	pos, err := ParsePosition("100.5,-20.25")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.X != 100.5 {
		t.Errorf("expected X=100.5, got %f", pos.X)
	}
	if pos.Y != -20.25 {
		t.Errorf("expected Y=-20.25, got %f", pos.Y)
	}
}

func TestParsePosition_Whitespace(t *testing.T) {
	pos, err := ParsePosition(" 10 , 20 ")
	require.NoError(t, err)
	assert.Equal(t, Position{X: 10, Y: 20}, pos)
}

func TestParsePosition_Invalid(t *testing.T) {
	for _, input := range []string{"", "100.5", "abc,10", "10,abc", "1,2,3", "0,91"} {
		_, err := ParsePosition(input)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("input %q: expected ErrInvalidCoordinates, got %v", input, err)
		}
	}
}

func TestDistance_SamePoint(t *testing.T) {
	p := Position{X: 12, Y: 34}
	assert.InDelta(t, 0, Distance(p, p), 1e-6)
}

func TestDistance_AlongEquator(t *testing.T) {
	assert.InDelta(t, 10, Distance(Position{X: 0, Y: 0}, Position{X: 10, Y: 0}), 1e-9)
}

func TestDistance_PoleToPole(t *testing.T) {
	assert.InDelta(t, 180, Distance(Position{X: 0, Y: 90}, Position{X: 0, Y: -90}), 1e-9)
}

func TestDistance_Symmetric(t *testing.T) {
	a := Position{X: -45, Y: 12}
	b := Position{X: 30, Y: -8}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-12)
}

func TestAngleOfPath_Cardinal(t *testing.T) {
	origin := Position{X: 0, Y: 0}
	assert.InDelta(t, 0, AngleOfPath(origin, Position{X: 0, Y: 10}), 1e-9)
	assert.InDelta(t, 90, AngleOfPath(origin, Position{X: 10, Y: 0}), 1e-9)
	assert.InDelta(t, 180, AngleOfPath(origin, Position{X: 0, Y: -10}), 1e-9)
	assert.InDelta(t, 270, AngleOfPath(origin, Position{X: -10, Y: 0}), 1e-9)
}

func TestNextPointInPath_MovesTowardTarget(t *testing.T) {
	start := Position{X: 0, Y: 0}
	end := Position{X: 20, Y: 0}

	next, angle := NextPointInPath(5, start, end)

	assert.InDelta(t, 5, next.X, 1e-9)
	assert.InDelta(t, 0, next.Y, 1e-9)
	assert.InDelta(t, 90, angle, 1e-9)
	assert.InDelta(t, 15, Distance(next, end), 1e-9)
}

func TestNextPointInPath_KeepsGreatCircle(t *testing.T) {
	start := Position{X: -30, Y: 40}
	end := Position{X: 50, Y: 10}
	total := Distance(start, end)

	next, _ := NextPointInPath(total/4, start, end)

	assert.InDelta(t, total/4, Distance(start, next), 1e-6)
	assert.InDelta(t, total*3/4, Distance(next, end), 1e-6)
}

func TestNextPointInPath_DegenerateReturnsTarget(t *testing.T) {
	p := Position{X: 10, Y: 10}
	next, _ := NextPointInPath(3, p, p)
	assert.Equal(t, p, next)
}

func TestShift(t *testing.T) {
	assert.Equal(t, Position{X: 1.5, Y: -0.5}, Position{X: 1, Y: -1}.Shift(0.5))
}

func TestToPoint_RoundTrip(t *testing.T) {
	p := Position{X: 100.5, Y: -20.25}
	point := ToPoint(p)

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	assert.Equal(t, 100.5, coords.X)
	assert.Equal(t, -20.25, coords.Y)

	back, ok := FromPoint(point)
	require.True(t, ok)
	assert.Equal(t, p, back)
}

func TestToWebMercator_Origin(t *testing.T) {
	point, err := ToWebMercator(Position{X: 0, Y: 0})
	require.NoError(t, err)

	coords, ok := point.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0, coords.X, 1e-6)
	assert.InDelta(t, 0, coords.Y, 1e-6)
}

func TestToWebMercator_Longitude(t *testing.T) {
	point, err := ToWebMercator(Position{X: 180, Y: 0})
	require.NoError(t, err)

	coords, ok := point.Coordinates()
	require.True(t, ok)
	// half the equatorial circumference of the WGS84 sphere used by 3857
	assert.InDelta(t, 20037508.34, coords.X, 1)
}

func TestToWebMercator_Invalid(t *testing.T) {
	_, err := ToWebMercator(Position{X: 0, Y: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestFlightPath(t *testing.T) {
	ls, err := FlightPath(Position{X: 1, Y: 2}, Position{X: 3, Y: 4}, Position{X: 5, Y: 6})
	require.NoError(t, err)

	pts := PathPositions(ls)
	require.Len(t, pts, 3)
	assert.Equal(t, Position{X: 1, Y: 2}, pts[0])
	assert.Equal(t, Position{X: 5, Y: 6}, pts[2])
}

func TestFlightPath_TooFewPoints(t *testing.T) {
	_, err := FlightPath(Position{X: 1, Y: 2})
	require.Error(t, err)
}

func TestLandMask(t *testing.T) {
	mask, err := NewLandMask("POLYGON((0 0,10 0,10 10,0 10,0 0))")
	require.NoError(t, err)

	assert.False(t, mask.IsWater(Position{X: 5, Y: 5}))
	assert.True(t, mask.IsWater(Position{X: 20, Y: 5}))
}

func TestLandMask_Empty(t *testing.T) {
	mask, err := NewLandMask()
	require.NoError(t, err)
	assert.True(t, mask.IsWater(Position{X: 5, Y: 5}))
}

func TestLandMask_InvalidWKT(t *testing.T) {
	_, err := NewLandMask("POLYGON((broken")
	require.Error(t, err)
}
