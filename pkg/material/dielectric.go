package material

import (
	"math"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// The hit normal points outward, so the sign of direction·normal tells whether
// the ray is entering or leaving the material.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Dielectrics always attenuate by 1.0 (no color absorption for clear glass)
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	unitDirection := rayIn.Direction.Normalize()
	dirDotNormal := unitDirection.Dot(hit.Normal)

	var outwardNormal core.Vec3
	var niOverNt, cosine float64
	if dirDotNormal > 0 {
		// Leaving the material
		outwardNormal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
		// Schlick takes the cosine on the air side of the interface
		cosine = math.Sqrt(math.Max(0, 1.0-niOverNt*niOverNt*(1.0-dirDotNormal*dirDotNormal)))
	} else {
		// Entering the material
		outwardNormal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
		cosine = -dirDotNormal
	}

	var direction core.Vec3
	refracted, canRefract := refract(unitDirection, outwardNormal, niOverNt)
	if !canRefract || sampler.Get1D() < Reflectance(cosine, d.RefractiveIndex) {
		direction = reflect(unitDirection, hit.Normal)
	} else {
		direction = refracted
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Kind implements the Material interface
func (d *Dielectric) Kind() string { return "dielectric" }

func (d *Dielectric) material() {}

// refract bends the unit vector uv through a surface with normal n facing the
// incoming side using Snell's law. Returns false on total internal reflection.
func refract(uv, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	refracted := uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant)))
	return refracted, true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractiveIndex float64) float64 {
	// Calculate R0 for normal incidence
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
