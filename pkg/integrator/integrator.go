package integrator

import (
	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// World finds the closest surface hit along a ray. *scene.Scene implements it.
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns a single radiance sample for the ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3
}
