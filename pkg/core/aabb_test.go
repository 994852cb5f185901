package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		tMin     float64
		tMax     float64
		expected bool
	}{
		{
			name:     "Ray through center",
			ray:      NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: true,
		},
		{
			name:     "Ray pointing away",
			ray:      NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: false,
		},
		{
			name:     "Ray misses to the side",
			ray:      NewRay(NewVec3(3, 0, -5), NewVec3(0, 0, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: false,
		},
		{
			name:     "Negative direction from far side",
			ray:      NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: true,
		},
		{
			name:     "Interval ends before box",
			ray:      NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)),
			tMin:     0,
			tMax:     3,
			expected: false,
		},
		{
			name:     "Origin inside box",
			ray:      NewRay(NewVec3(0, 0, 0), NewVec3(1, 1, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: true,
		},
		{
			name:     "Diagonal ray",
			ray:      NewRay(NewVec3(-5, -5, -5), NewVec3(1, 1, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: true,
		},
		{
			name:     "Origin on slab plane with zero direction component",
			ray:      NewRay(NewVec3(1, 0, -5), NewVec3(0, 0, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: true,
		},
		{
			name:     "Zero direction component outside slab",
			ray:      NewRay(NewVec3(0, 2, -5), NewVec3(0, 0, 1)),
			tMin:     0,
			tMax:     math.Inf(1),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, tt.tMin, tt.tMax); got != tt.expected {
				t.Errorf("Hit() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestAABB_HitFromBothDirections(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	box := NewAABB(NewVec3(-0.5, -0.25, 1), NewVec3(0.75, 0.5, 2))

	for i := 0; i < 200; i++ {
		// Pick a point inside the box and a ray origin outside of it
		inside := NewVec3(
			box.Min.X+random.Float64()*box.Size().X,
			box.Min.Y+random.Float64()*box.Size().Y,
			box.Min.Z+random.Float64()*box.Size().Z,
		)
		origin := NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		if box.Contains(origin) {
			continue
		}

		toward := NewRay(origin, inside.Subtract(origin))
		if !box.Hit(toward, 0, math.Inf(1)) {
			t.Fatalf("ray %v toward interior point %v missed %v", toward, inside, box)
		}

		// Reverse ray starting on the far side of the box
		farOrigin := inside.Add(inside.Subtract(origin))
		reverse := NewRay(farOrigin, origin.Subtract(inside))
		if !box.Hit(reverse, 0, math.Inf(1)) {
			t.Fatalf("reverse ray %v missed %v", reverse, box)
		}
	}
}

func TestAABB_Union(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	randomBox := func() AABB {
		p := NewVec3(random.Float64()*10-5, random.Float64()*10-5, random.Float64()*10-5)
		q := NewVec3(random.Float64()*10-5, random.Float64()*10-5, random.Float64()*10-5)
		return NewAABB(
			NewVec3(min(p.X, q.X), min(p.Y, q.Y), min(p.Z, q.Z)),
			NewVec3(max(p.X, q.X), max(p.Y, q.Y), max(p.Z, q.Z)),
		)
	}

	for i := 0; i < 100; i++ {
		a := randomBox()
		b := randomBox()
		union := a.Union(b)

		for _, corner := range []Vec3{a.Min, a.Max, b.Min, b.Max} {
			if !union.Contains(corner) {
				t.Fatalf("union %v does not contain corner %v", union, corner)
			}
		}
		for axis := 0; axis < 3; axis++ {
			if union.Min.Axis(axis) > union.Max.Axis(axis) {
				t.Fatalf("union %v has min above max on axis %d", union, axis)
			}
		}
	}
}

func TestAABB_CenterAndSize(t *testing.T) {
	box := NewAABB(NewVec3(-1, 0, 2), NewVec3(3, 4, 6))

	if got := box.Center(); got != NewVec3(1, 2, 4) {
		t.Errorf("Center() = %v, expected (1, 2, 4)", got)
	}
	if got := box.Size(); got != NewVec3(4, 4, 4) {
		t.Errorf("Size() = %v, expected (4, 4, 4)", got)
	}
}
