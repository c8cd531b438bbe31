package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the precision constant used for float64 comparisons and for
// deciding when a vector is effectively zero-length.
const (
	Epsilon = 1e-9
)

// Vec3 represents a 3D vector or point in cartesian space.
// Public fields because they are fundamental data, not internal state; this
// allows clean literal initialization: v := Vec3{1, 2, 3}
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector creates a new Vec3.
func NewVector(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// NewVectorSpherical creates a new Vec3 from spherical coordinates with the
// Z axis up: yaw is the azimuth around Z, pitch the elevation from the XY
// plane, both in radians. This is the orbit-camera parameterization.
func NewVectorSpherical(radius, yaw, pitch float64) Vec3 {
	x := radius * math.Sin(yaw) * math.Cos(pitch)
	y := radius * math.Cos(yaw) * math.Cos(pitch)
	z := radius * math.Sin(pitch)

	// Handle standard floating point precision issues near zero
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}
	if math.Abs(z) < Epsilon {
		z = 0
	}

	return Vec3{X: x, Y: y, Z: z}
}

// ---------------------------------------------------------------------
// Stringer Interface
// ---------------------------------------------------------------------

// String implements the fmt.Stringer interface.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// These methods use value receivers and return new values.
// This ensures immutability and is efficient for small structs.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Div scales the vector by 1/scalar.
// If scalar is zero it returns an Inf vector and an error; returning Inf is
// safer than panicking for math libraries.
func (v Vec3) Div(scalar float64) (Vec3, error) {
	if scalar == 0 {
		return Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}, errors.New("vector cannot be divided by zero")
	}
	return Vec3{v.X / scalar, v.Y / scalar, v.Z / scalar}, nil
}

// ---------------------------------------------------------------------
// Vec3 Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the cross product of two vectors.
// The result is perpendicular to both inputs, following the right-hand rule.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// This is faster than Len() as it avoids the square root. Use for comparisons.
func (v Vec3) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// ScaleTo returns a vector in the same direction with the given length.
// A zero vector stays zero regardless of the requested length.
func (v Vec3) ScaleTo(length float64) Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Mul(length / l)
}

// Limit clamps the vector's magnitude to max while preserving direction.
// Vectors already at or below max are returned unchanged.
func (v Vec3) Limit(max float64) Vec3 {
	if v.LenSqr() <= max*max {
		return v
	}
	return v.ScaleTo(max)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vec3) DistanceSquaredTo(other Vec3) float64 {
	return v.Sub(other).LenSqr()
}

// AngleBetween returns the angle (in radians) between the vector and other.
// Range: [0, Pi]. Either vector being zero-length yields 0.
func (v Vec3) AngleBetween(other Vec3) float64 {
	d := v.Len() * other.Len()
	if d < Epsilon {
		return 0
	}
	// Clamp to dodge acos domain errors from float drift.
	cos := v.Dot(other) / d
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vec3) Lerp(target Vec3, t float64) Vec3 {
	// Formula: v + (target - v) * t
	return v.Add(target.Sub(v).Mul(t))
}

// Project projects vector v onto vector on.
func (v Vec3) Project(on Vec3) Vec3 {
	scalar := v.Dot(on) / on.LenSqr()
	return on.Mul(scalar)
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
// This handles floating point inaccuracies.
func (v Vec3) Eq(other Vec3) bool {
	return math.Abs(v.X-other.X) <= Epsilon &&
		math.Abs(v.Y-other.Y) <= Epsilon &&
		math.Abs(v.Z-other.Z) <= Epsilon
}
