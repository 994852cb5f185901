package material

import (
	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

// Material scatters incoming rays at a surface hit.
// The set of materials is closed: Lambertian, Metal and Dielectric.
type Material interface {
	// Scatter returns the attenuation and scattered ray, or false when the
	// ray is absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// Kind returns the material name as used in scene files
	Kind() string

	material()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T        float64       // Parameter t along the ray
	Point    core.Vec3     // Point of intersection
	Normal   core.Vec3     // Outward unit normal (inward for negative-radius spheres)
	Material Material      // Material of the hit entity
	Entity   core.EntityID // Entity that was hit
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
