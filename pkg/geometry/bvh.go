package geometry

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/material"
)

// ErrEmptyBVH is returned when building a BVH without any leaves
var ErrEmptyBVH = errors.New("geometry: cannot build BVH from zero leaves")

// noChild marks a leaf node
const noChild = -1

// BVHNode is either a leaf referencing a scene entity or an internal node
// referencing two children by index into the BVH arena.
type BVHNode struct {
	Box    core.AABB
	Entity core.EntityID // valid for leaves only
	Left   int           // child index, noChild for leaves
	Right  int           // child index, noChild for leaves
}

// NewLeaf creates a leaf node for an entity and its bounding box
func NewLeaf(id core.EntityID, box core.AABB) BVHNode {
	return BVHNode{Box: box, Entity: id, Left: noChild, Right: noChild}
}

// IsLeaf reports whether the node references an entity
func (n BVHNode) IsLeaf() bool {
	return n.Left == noChild
}

// EntityIntersector intersects a ray with a single entity. The scene
// implements it for leaf nodes.
type EntityIntersector interface {
	HitEntity(id core.EntityID, ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

// BVH is a bounding volume hierarchy stored as a flat, append-only arena.
// Leaves occupy the first indices; internal nodes are appended after them and
// the last node is the root. A built BVH is read-only and safe to share
// between goroutines.
type BVH struct {
	Nodes []BVHNode
	Root  int
}

// BuildBVH builds a hierarchy over the given leaves. Each level sorts its
// range along a randomly chosen axis and splits it in half. A single leaf is
// paired with itself so every internal node has two children.
func BuildBVH(leaves []BVHNode, random *rand.Rand) (*BVH, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyBVH
	}

	// Room for the leaves plus at most one internal node per leaf
	nodes := make([]BVHNode, len(leaves), 2*len(leaves))
	copy(nodes, leaves)

	bvh := &BVH{Nodes: nodes}
	bvh.Root = bvh.build(0, len(leaves), random)
	return bvh, nil
}

// build appends the internal node for nodes[base:base+n] and returns its index
func (bvh *BVH) build(base, n int, random *rand.Rand) int {
	axis := random.Intn(3)
	span := bvh.Nodes[base : base+n]
	sort.Slice(span, func(i, j int) bool {
		return span[i].Box.Min.Axis(axis) < span[j].Box.Min.Axis(axis)
	})

	var left, right int
	switch n {
	case 1:
		left, right = base, base
	case 2:
		left, right = base, base+1
	default:
		left = bvh.build(base, n/2, random)
		right = bvh.build(base+n/2, n-n/2, random)
	}

	bvh.Nodes = append(bvh.Nodes, BVHNode{
		Box:    bvh.Nodes[left].Box.Union(bvh.Nodes[right].Box),
		Entity: core.InvalidEntity,
		Left:   left,
		Right:  right,
	})
	return len(bvh.Nodes) - 1
}

// Hit returns the closest hit along the ray in (tMin, tMax), tagged with the
// entity of the leaf that produced it.
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, intersector EntityIntersector) (*material.HitRecord, bool) {
	if bvh == nil || len(bvh.Nodes) == 0 {
		return nil, false
	}
	hit := bvh.hitNode(bvh.Root, ray, tMin, tMax, intersector)
	return hit, hit != nil
}

func (bvh *BVH) hitNode(index int, ray core.Ray, tMin, tMax float64, intersector EntityIntersector) *material.HitRecord {
	node := &bvh.Nodes[index]

	if node.IsLeaf() {
		hit, ok := intersector.HitEntity(node.Entity, ray, tMin, tMax)
		if !ok {
			return nil
		}
		hit.Entity = node.Entity
		return hit
	}

	if !node.Box.Hit(ray, tMin, tMax) {
		return nil
	}

	// Both children are tested against the full interval
	leftHit := bvh.hitNode(node.Left, ray, tMin, tMax, intersector)
	rightHit := bvh.hitNode(node.Right, ray, tMin, tMax, intersector)

	switch {
	case leftHit != nil && rightHit != nil:
		if leftHit.T < rightHit.T {
			return leftHit
		}
		return rightHit
	case leftHit != nil:
		return leftHit
	default:
		return rightHit
	}
}

// BoundingBox returns the bounds of the whole hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh == nil || len(bvh.Nodes) == 0 {
		return core.AABB{}
	}
	return bvh.Nodes[bvh.Root].Box
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{TotalNodes: len(bvh.Nodes)}
	for _, node := range bvh.Nodes {
		if node.IsLeaf() {
			stats.LeafNodes++
		}
	}
	if len(bvh.Nodes) > 0 {
		bvh.collectDepth(bvh.Root, 0, &stats)
	}
	return stats
}

func (bvh *BVH) collectDepth(index, depth int, stats *BVHStats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	node := bvh.Nodes[index]
	if node.IsLeaf() {
		return
	}
	bvh.collectDepth(node.Left, depth+1, stats)
	if node.Right != node.Left {
		bvh.collectDepth(node.Right, depth+1, stats)
	}
}

// String dumps the hierarchy breadth-first, one node per line
func (bvh *BVH) String() string {
	if bvh == nil || len(bvh.Nodes) == 0 {
		return "BVH: empty\n"
	}

	var sb strings.Builder
	queue := []int{bvh.Root}
	for len(queue) > 0 {
		index := queue[0]
		queue = queue[1:]
		node := bvh.Nodes[index]
		if node.IsLeaf() {
			fmt.Fprintf(&sb, "%d : %v - entity: %d\n", index, node.Box, node.Entity)
			continue
		}
		fmt.Fprintf(&sb, "%d : %v - left: %d, right: %d\n", index, node.Box, node.Left, node.Right)
		queue = append(queue, node.Left)
		if node.Right != node.Left {
			queue = append(queue, node.Right)
		}
	}
	return sb.String()
}
