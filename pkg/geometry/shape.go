package geometry

import (
	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// Shape is a center-less primitive. The center comes from the owning
// entity's position in the scene table.
type Shape interface {
	// Hit returns the nearest intersection strictly inside (tMin, tMax).
	// Material and Entity on the returned record are left for the caller to fill.
	Hit(center core.Vec3, ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	BoundingBox(center core.Vec3) core.AABB
	// Kind returns the shape name as used in scene files
	Kind() string
}
