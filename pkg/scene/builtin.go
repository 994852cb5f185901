package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/geometry"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// ErrUnknownScene is returned for a builtin scene name that does not exist
var ErrUnknownScene = errors.New("scene: unknown builtin scene")

// Options control how builtin scenes are constructed
type Options struct {
	AspectRatio float64 // Image width / height
	Seed        int64   // Seed for randomly generated scenes
}

type builtin struct {
	description string
	build       func(opts Options) *Scene
}

var builtins = map[string]builtin{
	"balls": {
		description: "Ground, diffuse, metal and hollow glass spheres in a row",
		build:       NewBallsScene,
	},
	"random": {
		description: "Large grid of small random spheres with three large feature spheres",
		build:       NewRandomScene,
	},
	"single": {
		description: "One diffuse sphere under the sky",
		build:       NewSingleSphereScene,
	},
}

// NewBuiltin constructs the named builtin scene
func NewBuiltin(name string, opts Options) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(opts), nil
}

// defaultCamera looks down -z from the origin with a 90 degree field of view
func defaultCamera(aspectRatio float64) geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: aspectRatio,
	}
}

// NewSingleSphereScene creates a scene with a single gray diffuse sphere
func NewSingleSphereScene(opts Options) *Scene {
	s := New("single", defaultCamera(opts.AspectRatio))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	return s
}

// NewBallsScene creates the classic three-ball scene. The glass ball has a
// negative-radius inner sphere which turns it into a thin hollow shell.
func NewBallsScene(opts Options) *Scene {
	s := New("balls", defaultCamera(opts.AspectRatio))

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0))

	glass := material.NewDielectric(1.5)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(-1, 0, -1), -0.45, glass)

	return s
}

// NewRandomScene creates a ground plane covered with small random spheres.
// The layout is fully determined by opts.Seed.
func NewRandomScene(opts Options) *Scene {
	s := New("random", geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   opts.AspectRatio,
		Aperture:      0.1,
		FocusDistance: 10,
	})
	random := rand.New(rand.NewSource(opts.Seed))

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	glass := material.NewDielectric(1.5)
	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch m := random.Float64(); {
			case m < 0.8:
				mat = material.NewLambertian(core.NewVec3(
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
				))
			case m < 0.95:
				albedo := core.NewVec3(
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
				)
				mat = material.NewMetal(albedo, 0.5*random.Float64())
			default:
				mat = glass
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s
}

// BuiltinNames returns the sorted names of all builtin scenes
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
