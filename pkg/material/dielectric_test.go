package material

import (
	"math"
	"testing"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

func TestDielectricBasicBehavior(t *testing.T) {
	glass := NewDielectric(1.5)

	// 45-degree ray entering from above
	rayDirection := core.NewVec3(1, -1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, 1, 0), rayDirection)
	hit := HitRecord{
		Point:    core.NewVec3(0, 0, 0),
		Normal:   core.NewVec3(0, 1, 0),
		T:        1.0,
		Material: glass,
	}

	hasReflection := false
	hasRefraction := false
	for seed := int64(0); seed < 1000; seed++ {
		result, scattered := glass.Scatter(ray, hit, core.NewSeededSampler(seed))
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Attenuation != core.NewVec3(1, 1, 1) {
			t.Fatalf("Expected white attenuation, got %v", result.Attenuation)
		}

		direction := result.Scattered.Direction.Normalize()
		if direction.Y > 0 {
			hasReflection = true
			continue
		}
		hasRefraction = true

		// Snell's law: sin(theta_t) = sin(theta_i) / 1.5
		expectedSin := math.Sin(math.Pi/4) / 1.5
		if math.Abs(direction.X-expectedSin) > 1e-9 {
			t.Fatalf("Refracted sin = %.6f, expected %.6f", direction.X, expectedSin)
		}
	}

	if !hasRefraction {
		t.Error("Expected to see refraction in at least some cases")
	}
	t.Logf("Found reflection: %t, Found refraction: %t", hasReflection, hasRefraction)
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Ray inside the glass heading out at a shallow angle
	rayDirection := core.NewVec3(1, 0.1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, -1, 0), rayDirection)
	hit := HitRecord{
		Point:    core.NewVec3(0, 0, 0),
		Normal:   core.NewVec3(0, 1, 0),
		T:        1.0,
		Material: glass,
	}

	for i := 0; i < 10; i++ {
		result, scattered := glass.Scatter(ray, hit, core.NewSeededSampler(int64(i)))
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Scattered.Direction.Y >= 0 {
			t.Errorf("Expected total internal reflection back into the glass, got %v", result.Scattered.Direction)
		}
		if math.Abs(result.Scattered.Direction.X-rayDirection.X) > 1e-10 {
			t.Errorf("Expected X component %.6f, got %.6f", rayDirection.X, result.Scattered.Direction.X)
		}
	}
}

func TestDielectricGrazingIncidenceReflects(t *testing.T) {
	glass := NewDielectric(1.5)
	sampler := core.NewSeededSampler(1234)

	tests := []struct {
		name       string
		direction  core.Vec3
		minReflect float64
		maxReflect float64
	}{
		{"Near grazing", core.NewVec3(1, -0.001, 0), 0.98, 1.0},
		{"Normal incidence", core.NewVec3(0, -1, 0), 0.02, 0.06},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 1, 0), tt.direction)
			hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), Material: glass}

			const trials = 20000
			reflections := 0
			for i := 0; i < trials; i++ {
				result, _ := glass.Scatter(ray, hit, sampler)
				if result.Scattered.Direction.Y > 0 {
					reflections++
				}
			}

			fraction := float64(reflections) / trials
			if fraction < tt.minReflect || fraction > tt.maxReflect {
				t.Errorf("Reflection fraction %.4f outside [%.2f, %.2f]", fraction, tt.minReflect, tt.maxReflect)
			}
		})
	}
}

func TestReflectanceFunction(t *testing.T) {
	// Normal incidence for glass is about 4%
	r0 := Reflectance(1.0, 1.5)
	if math.Abs(r0-0.04) > 1e-9 {
		t.Errorf("Normal incidence reflectance = %.4f, expected 0.04", r0)
	}

	// Grazing incidence reflects everything
	r90 := Reflectance(0.0, 1.5)
	if math.Abs(r90-1.0) > 1e-9 {
		t.Errorf("Grazing reflectance = %.4f, expected 1.0", r90)
	}

	// Reflectance increases monotonically as the angle grows
	prev := Reflectance(1.0, 1.5)
	for cosine := 0.9; cosine >= 0; cosine -= 0.1 {
		r := Reflectance(cosine, 1.5)
		if r < prev {
			t.Errorf("Reflectance not monotonic at cos=%.1f: %.4f < %.4f", cosine, r, prev)
		}
		prev = r
	}
}

func TestRefract(t *testing.T) {
	// Matching indices pass straight through
	uv := core.NewVec3(1, -1, 0).Normalize()
	refracted, ok := refract(uv, core.NewVec3(0, 1, 0), 1.0)
	if !ok {
		t.Fatal("Expected refraction with matching indices")
	}
	if refracted.Subtract(uv).Length() > 1e-12 {
		t.Errorf("Expected unchanged direction %v, got %v", uv, refracted)
	}

	// Steep exit from dense medium is total internal reflection
	if _, ok := refract(core.NewVec3(1, -0.1, 0).Normalize(), core.NewVec3(0, 1, 0), 1.5); ok {
		t.Error("Expected total internal reflection")
	}
}
