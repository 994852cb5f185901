package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"three-balls", "Three Balls"},
		{"glass_shell", "Glass Shell"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"two-spheres.yaml": twoSpheres,
		"no_header.yml":    "camera: {center: [0,0,0], look_at: [0,0,-1], vfov: 90}\n",
		"broken.yaml":      "name: [unclosed",
		"notes.txt":        "not a scene",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	scenes, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}

	// Sorted by display name
	if scenes[0].DisplayName != "No Header" || scenes[0].ID != "file:no_header" {
		t.Errorf("Unexpected first scene %+v", scenes[0])
	}
	if scenes[1].DisplayName != "two spheres" || scenes[1].Description != "diffuse and glass" {
		t.Errorf("Unexpected second scene %+v", scenes[1])
	}
	for _, s := range scenes {
		if s.Type != "file" || s.FilePath == "" {
			t.Errorf("Scene %q missing file metadata", s.ID)
		}
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Errorf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	scenes, err := ListAllScenes(t.TempDir())
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	expected := []string{"balls", "random", "single"}
	if len(scenes) != len(expected) {
		t.Fatalf("Expected %d builtin scenes, got %d", len(expected), len(scenes))
	}
	for i, id := range expected {
		if scenes[i].ID != id || scenes[i].Type != "builtin" || scenes[i].Description == "" {
			t.Errorf("Unexpected scene %+v", scenes[i])
		}
	}
}

func TestResolve(t *testing.T) {
	if s, err := Resolve("single", Options{AspectRatio: 1}); err != nil || s.Name != "single" {
		t.Errorf("Resolve(single) = %v, %v", s, err)
	}

	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(twoSpheres), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if s, err := Resolve(path, Options{AspectRatio: 1}); err != nil || s.Name != "two spheres" {
		t.Errorf("Resolve(%s) = %v, %v", path, s, err)
	}

	if _, err := Resolve("cornell-box", Options{}); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestShippedSceneFiles(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join("..", "..", "scenes"))
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(scenes) == 0 {
		t.Fatal("Expected the scenes directory to contain scene files")
	}

	for _, info := range scenes {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Resolve(info.FilePath, Options{AspectRatio: 16.0 / 9.0})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if err := s.Preprocess(nil); err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			if s.Len() == 0 {
				t.Error("Expected at least one entity")
			}
		})
	}
}
