package server

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/geometry"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Entity       int                    `json:"entity"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
	case *material.Metal:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	case nil:
		return "none", properties
	}
	return mat.Kind(), properties
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(position core.Vec3, shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if shape == nil {
		return "unknown", properties
	}

	properties["center"] = vec(position)
	if sphere, ok := shape.(*geometry.Sphere); ok {
		properties["radius"] = sphere.Radius
		properties["hollow"] = sphere.Radius < 0
	}
	box := shape.BoundingBox(position)
	properties["boundingBox"] = map[string]interface{}{
		"min": vec(box.Min),
		"max": vec(box.Max),
	}
	return shape.Kind(), properties
}

// inspectPixel casts a ray through the center of a pixel (y = 0 is the top
// row) and reports the first entity hit
func inspectPixel(s *scene.Scene, width, height, pixelX, pixelY int) InspectResponse {
	if s == nil || s.BVH == nil {
		return InspectResponse{Hit: false, Entity: int(core.InvalidEntity)}
	}

	// Deterministic sampler so the lens offset is stable between requests
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(0)))
	u := (float64(pixelX) + 0.5) / float64(width)
	v := (float64(height-1-pixelY) + 0.5) / float64(height)
	ray := s.Camera.GetRay(u, v, sampler)

	hit, isHit := s.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return InspectResponse{Hit: false, Entity: int(core.InvalidEntity)}
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	position, shape, _ := s.Entity(hit.Entity)
	geometryType, geometryProps := extractGeometryInfo(position, shape)

	return InspectResponse{
		Hit:          true,
		Entity:       int(hit.Entity),
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec(hit.Point),
		Normal:       vec(hit.Normal),
		Distance:     hit.T,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}
}

// handleInspect handles ray casting inspection requests against the scene
// of the latest published frame
func (s *Server) handleInspect(c echo.Context) error {
	s.mu.RLock()
	current := s.scene
	frame := s.frame
	s.mu.RUnlock()

	if current == nil || frame == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no frame rendered yet"})
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
	}

	width, height := frame.Bounds().Dx(), frame.Bounds().Dy()
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
	}

	return c.JSON(http.StatusOK, inspectPixel(current, width, height, pixelX, pixelY))
}
