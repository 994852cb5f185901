package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/geometry"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// ErrInvalidSceneFile is wrapped by every scene file validation error
var ErrInvalidSceneFile = errors.New("scene: invalid scene file")

// File is the YAML representation of a scene
type File struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Camera      CameraFile   `yaml:"camera"`
	Spheres     []SphereFile `yaml:"spheres"`
}

// CameraFile is the YAML representation of a camera. Vectors are [x, y, z].
type CameraFile struct {
	Center        []float64 `yaml:"center"`
	LookAt        []float64 `yaml:"look_at"`
	Up            []float64 `yaml:"up,omitempty"`
	VFov          float64   `yaml:"vfov"`
	Aperture      float64   `yaml:"aperture,omitempty"`
	FocusDistance float64   `yaml:"focus_distance,omitempty"`
}

// SphereFile is the YAML representation of a sphere entity
type SphereFile struct {
	Center   []float64    `yaml:"center"`
	Radius   float64      `yaml:"radius"`
	Material MaterialFile `yaml:"material"`
}

// MaterialFile is the YAML representation of a material
type MaterialFile struct {
	Type            string    `yaml:"type"`
	Albedo          []float64 `yaml:"albedo,omitempty"`
	Fuzz            float64   `yaml:"fuzz,omitempty"`
	RefractiveIndex float64   `yaml:"refractive_index,omitempty"`
}

// LoadFile reads a YAML scene file
func LoadFile(path string, opts Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", path, err)
	}
	s, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML data
func Parse(data []byte, opts Options) (*Scene, error) {
	var file File
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSceneFile, err)
	}
	return file.Build(opts)
}

// Build converts the file representation into a scene
func (f *File) Build(opts Options) (*Scene, error) {
	cameraConfig, err := f.Camera.config(opts.AspectRatio)
	if err != nil {
		return nil, err
	}

	name := f.Name
	if name == "" {
		name = "file"
	}
	s := New(name, cameraConfig)

	for i, sphere := range f.Spheres {
		center, err := toVec3(sphere.Center, fmt.Sprintf("spheres[%d].center", i))
		if err != nil {
			return nil, err
		}
		if sphere.Radius == 0 {
			return nil, fmt.Errorf("%w: spheres[%d].radius must be non-zero", ErrInvalidSceneFile, i)
		}
		mat, err := sphere.Material.material(fmt.Sprintf("spheres[%d].material", i))
		if err != nil {
			return nil, err
		}
		s.AddSphere(center, sphere.Radius, mat)
	}

	return s, nil
}

func (c CameraFile) config(aspectRatio float64) (geometry.CameraConfig, error) {
	center, err := toVec3(c.Center, "camera.center")
	if err != nil {
		return geometry.CameraConfig{}, err
	}
	lookAt, err := toVec3(c.LookAt, "camera.look_at")
	if err != nil {
		return geometry.CameraConfig{}, err
	}
	up := core.NewVec3(0, 1, 0)
	if c.Up != nil {
		if up, err = toVec3(c.Up, "camera.up"); err != nil {
			return geometry.CameraConfig{}, err
		}
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return geometry.CameraConfig{}, fmt.Errorf("%w: camera.vfov must be in (0, 180), got %v", ErrInvalidSceneFile, c.VFov)
	}

	return geometry.CameraConfig{
		Center:        center,
		LookAt:        lookAt,
		Up:            up,
		VFov:          c.VFov,
		AspectRatio:   aspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}, nil
}

func (m MaterialFile) material(field string) (material.Material, error) {
	switch m.Type {
	case "lambertian":
		albedo, err := toVec3(m.Albedo, field+".albedo")
		if err != nil {
			return nil, err
		}
		return material.NewLambertian(albedo), nil
	case "metal":
		albedo, err := toVec3(m.Albedo, field+".albedo")
		if err != nil {
			return nil, err
		}
		return material.NewMetal(albedo, m.Fuzz), nil
	case "dielectric":
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("%w: %s.refractive_index must be positive", ErrInvalidSceneFile, field)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("%w: %s.type %q is not one of lambertian, metal, dielectric", ErrInvalidSceneFile, field, m.Type)
	}
}

func toVec3(values []float64, field string) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %s must have 3 components, got %d", ErrInvalidSceneFile, field, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func fromVec3(v core.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Export converts a scene back into its file representation
func Export(s *Scene, description string) (*File, error) {
	cfg := s.CameraConfig
	file := &File{
		Name:        s.Name,
		Description: description,
		Camera: CameraFile{
			Center:        fromVec3(cfg.Center),
			LookAt:        fromVec3(cfg.LookAt),
			Up:            fromVec3(cfg.Up),
			VFov:          cfg.VFov,
			Aperture:      cfg.Aperture,
			FocusDistance: cfg.FocusDistance,
		},
	}

	var exportErr error
	s.Each(func(id core.EntityID, position core.Vec3, shape geometry.Shape, mat material.Material) {
		if exportErr != nil {
			return
		}
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			exportErr = fmt.Errorf("scene: entity %d: cannot export shape %q", id, shape.Kind())
			return
		}

		entry := SphereFile{
			Center:   fromVec3(position),
			Radius:   sphere.Radius,
			Material: MaterialFile{Type: mat.Kind()},
		}
		switch m := mat.(type) {
		case *material.Lambertian:
			entry.Material.Albedo = fromVec3(m.Albedo)
		case *material.Metal:
			entry.Material.Albedo = fromVec3(m.Albedo)
			entry.Material.Fuzz = m.Fuzz
		case *material.Dielectric:
			entry.Material.RefractiveIndex = m.RefractiveIndex
		}
		file.Spheres = append(file.Spheres, entry)
	})
	if exportErr != nil {
		return nil, exportErr
	}
	return file, nil
}

// Marshal encodes a scene as YAML
func Marshal(s *Scene, description string) ([]byte, error) {
	file, err := Export(s, description)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(file)
}
