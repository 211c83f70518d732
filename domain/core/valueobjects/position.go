package valueobjects

import (
	"encoding/json"
	"math"

	pkgerrors "observador-backend/pkg/errors"
)

// Position is a value object representing node coordinates in 3D space
type Position struct {
	x float64
	y float64
	z float64
}

// Origin is where the observer node sits
var Origin = Position{}

// NewPosition3D creates a 3D position with validation
func NewPosition3D(x, y, z float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) || !isValidCoordinate(z) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y, z: z}, nil
}

// PolarPosition places a point at the given angle on a circle of radius r
// centred on the origin, lifted to height z. Non-finite inputs collapse to 0.
func PolarPosition(radius, angle, z float64) Position {
	return Position{
		x: finiteOrZero(radius * math.Cos(angle)),
		y: finiteOrZero(radius * math.Sin(angle)),
		z: finiteOrZero(z),
	}
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// Z returns the Z coordinate
func (p Position) Z() float64 {
	return p.z
}

// PlanarDistance is the distance from the vertical axis through the origin
func (p Position) PlanarDistance() float64 {
	return math.Hypot(p.x, p.y)
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	dz := p.z - other.z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Equal checks if two positions are equal within 1e-9
func (p Position) Equal(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon &&
		math.Abs(p.z-other.z) < epsilon
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{X: p.x, Y: p.y, Z: p.z})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pos, err := NewPosition3D(raw.X, raw.Y, raw.Z)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !isValidCoordinate(v) {
		return 0
	}
	return v
}
