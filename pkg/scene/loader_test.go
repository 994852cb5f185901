package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/geometry"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

const twoSpheres = `name: two spheres
description: diffuse and glass
camera:
  center: [0, 0, 0]
  look_at: [0, 0, -1]
  vfov: 90
spheres:
  - center: [0, 0, -1]
    radius: 0.5
    material:
      type: lambertian
      albedo: [0.1, 0.2, 0.5]
  - center: [-1, 0, -1]
    radius: -0.45
    material:
      type: dielectric
      refractive_index: 1.5
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(twoSpheres), Options{AspectRatio: 2})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if s.Name != "two spheres" {
		t.Errorf("Expected name %q, got %q", "two spheres", s.Name)
	}
	if s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up vector, got %v", s.CameraConfig.Up)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio from options, got %v", s.CameraConfig.AspectRatio)
	}

	lambertian, ok := s.Material(0).(*material.Lambertian)
	if !ok || lambertian.Albedo != core.NewVec3(0.1, 0.2, 0.5) {
		t.Errorf("Unexpected material for entity 0: %#v", s.Material(0))
	}
	glass, ok := s.Material(1).(*material.Dielectric)
	if !ok || glass.RefractiveIndex != 1.5 {
		t.Errorf("Unexpected material for entity 1: %#v", s.Material(1))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Malformed YAML", "camera: [unclosed"},
		{"Unknown field", "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 90}\nlights: []\n"},
		{"Short vector", "camera: {center: [0,0], look_at: [0,0,-1], vfov: 90}\n"},
		{"Bad field of view", "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 0}\n"},
		{"Zero radius", "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 90}\nspheres:\n  - {center: [0,0,-1], radius: 0, material: {type: dielectric, refractive_index: 1.5}}\n"},
		{"Unknown material", "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 90}\nspheres:\n  - {center: [0,0,-1], radius: 1, material: {type: emissive}}\n"},
		{"Missing albedo", "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 90}\nspheres:\n  - {center: [0,0,-1], radius: 1, material: {type: metal, fuzz: 0.1}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), Options{AspectRatio: 1})
			if !errors.Is(err, ErrInvalidSceneFile) {
				t.Errorf("Expected ErrInvalidSceneFile, got %v", err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	original := NewBallsScene(Options{AspectRatio: 2})
	data, err := Marshal(original, "exported")
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	loaded, err := Parse(data, Options{AspectRatio: 2})
	if err != nil {
		t.Fatalf("Parse of exported scene failed: %v\n%s", err, data)
	}

	if loaded.CameraConfig != original.CameraConfig {
		t.Errorf("Camera changed: %+v vs %+v", loaded.CameraConfig, original.CameraConfig)
	}

	type row struct {
		position core.Vec3
		radius   float64
		kind     string
	}
	collect := func(s *Scene) []row {
		var rows []row
		s.Each(func(_ core.EntityID, p core.Vec3, shape geometry.Shape, mat material.Material) {
			rows = append(rows, row{p, shape.(*geometry.Sphere).Radius, mat.Kind()})
		})
		return rows
	}

	want, got := collect(original), collect(loaded)
	if len(want) != len(got) {
		t.Fatalf("Expected %d entities, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("Entity %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two.yaml")
	if err := os.WriteFile(path, []byte(twoSpheres), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := LoadFile(path, Options{AspectRatio: 1})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if countEntities(s) != 2 {
		t.Errorf("Expected 2 entities, got %d", countEntities(s))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml"), Options{}); err == nil {
		t.Error("Expected error for missing file")
	}
}
