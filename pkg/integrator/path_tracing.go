package integrator

import (
	"math"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

const (
	// DefaultMaxDepth is the bounce count after which paths return black
	DefaultMaxDepth = 50

	// hitEpsilon offsets tMin to avoid self-intersection ("shadow acne")
	hitEpsilon = 0.001
)

var (
	horizonColor = core.NewVec3(1.0, 1.0, 1.0)
	zenithColor  = core.NewVec3(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements unidirectional path tracing with a fixed
// bounce cutoff and a sky gradient as the only light source
type PathTracingIntegrator struct {
	MaxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{MaxDepth: maxDepth}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3 {
	return pt.radiance(ray, world, sampler, 0)
}

func (pt *PathTracingIntegrator) radiance(ray core.Ray, world World, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := world.Hit(ray, hitEpsilon, math.Inf(1))
	if !isHit {
		return BackgroundGradient(ray)
	}

	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth >= pt.MaxDepth {
		return core.Vec3{}
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.radiance(scatter.Scattered, world, sampler, depth+1))
}

// BackgroundGradient returns the sky color seen along a ray that hits nothing:
// white at the horizon blending to light blue at the zenith
func BackgroundGradient(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return horizonColor.Lerp(t, zenithColor)
}
