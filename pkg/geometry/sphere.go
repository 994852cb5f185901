package geometry

import (
	"math"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// Sphere represents a sphere shape. A negative radius keeps the same surface
// but flips the normal inward, which is used for hollow glass shells.
type Sphere struct {
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(radius float64) *Sphere {
	return &Sphere{Radius: radius}
}

// Hit tests if a ray intersects with the sphere centered at center
func (s *Sphere) Hit(center core.Vec3, ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(center)

	// Quadratic equation coefficients with the factor of 2 folded out of b
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminantQuarter := halfB*halfB - a*c

	// Tangent rays count as misses
	if discriminantQuarter <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminantQuarter)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !(tMin < root && root < tMax) {
		root = (-halfB + sqrtD) / a
		if !(tMin < root && root < tMax) {
			return nil, false
		}
	}

	point := ray.At(root)
	return &material.HitRecord{
		T:      root,
		Point:  point,
		Normal: point.Subtract(center).Multiply(1.0 / s.Radius),
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox(center core.Vec3) core.AABB {
	r := math.Abs(s.Radius)
	radius := core.NewVec3(r, r, r)
	return core.NewAABB(
		center.Subtract(radius),
		center.Add(radius),
	)
}

// Kind implements the Shape interface
func (s *Sphere) Kind() string { return "sphere" }
