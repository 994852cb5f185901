package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/geometry"
	"github.com/df07/go-adaptive-pathtracer/pkg/log"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

var logger = log.New("scene")

// ErrEmptyScene is returned when no entity has a position, shape and material
var ErrEmptyScene = errors.New("scene: no renderable entities")

// component flags which columns of the entity table are set
type component uint8

const (
	hasPosition component = 1 << iota
	hasShape
	hasMaterial

	renderable = hasPosition | hasShape | hasMaterial
)

// Scene is a struct-of-arrays entity table. Entity ids index every column.
// Only entities with a position, a shape and a material are rendered.
type Scene struct {
	Name         string
	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
	BVH          *geometry.BVH // Built by Preprocess

	positions []core.Vec3
	shapes    []geometry.Shape
	materials []material.Material
	mask      []component
}

// New creates an empty scene with the given camera
func New(name string, cameraConfig geometry.CameraConfig) *Scene {
	return &Scene{
		Name:         name,
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
	}
}

// NewEntity appends an empty entity row and returns its id
func (s *Scene) NewEntity() core.EntityID {
	s.positions = append(s.positions, core.Vec3{})
	s.shapes = append(s.shapes, nil)
	s.materials = append(s.materials, nil)
	s.mask = append(s.mask, 0)
	return core.EntityID(len(s.mask) - 1)
}

// SetPosition sets the position component of an entity
func (s *Scene) SetPosition(id core.EntityID, position core.Vec3) {
	s.positions[id] = position
	s.mask[id] |= hasPosition
}

// SetShape sets the shape component of an entity
func (s *Scene) SetShape(id core.EntityID, shape geometry.Shape) {
	s.shapes[id] = shape
	s.mask[id] |= hasShape
}

// SetMaterial sets the material component of an entity
func (s *Scene) SetMaterial(id core.EntityID, mat material.Material) {
	s.materials[id] = mat
	s.mask[id] |= hasMaterial
}

// AddSphere adds a complete sphere entity
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) core.EntityID {
	id := s.NewEntity()
	s.SetPosition(id, center)
	s.SetShape(id, geometry.NewSphere(radius))
	s.SetMaterial(id, mat)
	return id
}

// Len returns the number of entity rows, complete or not
func (s *Scene) Len() int {
	return len(s.mask)
}

// Each calls fn for every renderable entity in id order
func (s *Scene) Each(fn func(id core.EntityID, position core.Vec3, shape geometry.Shape, mat material.Material)) {
	for i, m := range s.mask {
		if m&renderable != renderable {
			continue
		}
		fn(core.EntityID(i), s.positions[i], s.shapes[i], s.materials[i])
	}
}

// Material returns the material of an entity, or nil if it has none
func (s *Scene) Material(id core.EntityID) material.Material {
	if id < 0 || int(id) >= len(s.mask) || s.mask[id]&hasMaterial == 0 {
		return nil
	}
	return s.materials[id]
}

// Entity returns the position and shape of a renderable entity
func (s *Scene) Entity(id core.EntityID) (core.Vec3, geometry.Shape, bool) {
	if id < 0 || int(id) >= len(s.mask) || s.mask[id]&renderable != renderable {
		return core.Vec3{}, nil, false
	}
	return s.positions[id], s.shapes[id], true
}

// HitEntity intersects a ray with a single entity and attaches its material
func (s *Scene) HitEntity(id core.EntityID, ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if s.mask[id]&renderable != renderable {
		return nil, false
	}
	hit, ok := s.shapes[id].Hit(s.positions[id], ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	hit.Material = s.materials[id]
	hit.Entity = id
	return hit, true
}

// Hit finds the closest entity hit along the ray
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.BVH.Hit(ray, tMin, tMax, s)
}

// Preprocess builds the BVH over all renderable entities. It must not run
// while a frame is being rendered.
func (s *Scene) Preprocess(random *rand.Rand) error {
	if random == nil {
		random = rand.New(rand.NewSource(1))
	}

	var leaves []geometry.BVHNode
	s.Each(func(id core.EntityID, position core.Vec3, shape geometry.Shape, _ material.Material) {
		leaves = append(leaves, geometry.NewLeaf(id, shape.BoundingBox(position)))
	})

	bvh, err := geometry.BuildBVH(leaves, random)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmptyScene, err)
	}
	s.BVH = bvh

	stats := bvh.Stats()
	logger.Infof("scene %q: built BVH over %d entities (%d nodes, depth %d)",
		s.Name, stats.LeafNodes, stats.TotalNodes, stats.MaxDepth)
	logger.Debugf("BVH layout:\n%s", bvh)
	return nil
}
