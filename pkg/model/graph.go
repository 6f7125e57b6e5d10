package model

import "sort"

// ConflictGraph is the derived "must not share a slot" relation between
// courses. Vertices are dense indexes into flat arrays so the search hot
// path stays allocation-free: adjacency is a flat bitset plus neighbor
// lists, and per-vertex seat demand, teacher linkage and pins live in
// parallel slices. The graph is never mutated by the search; it is
// rebuilt (or patched by the builder) whenever enrollment changes.
type ConflictGraph struct {
	CourseIDs []CourseID    // vertex -> course id, ascending
	Seats     []int         // vertex -> enrolled student count
	Teachers  [][]TeacherID // vertex -> linked teachers
	Pins      []SlotID      // vertex -> pinned slot, "" if unpinned

	index     map[CourseID]int
	words     int
	bits      []uint64
	neighbors [][]int32
}

// NewConflictGraph allocates an edgeless graph over the given course ids,
// which must be sorted ascending and free of duplicates.
func NewConflictGraph(ids []CourseID) *ConflictGraph {
	n := len(ids)
	g := &ConflictGraph{
		CourseIDs: ids,
		Seats:     make([]int, n),
		Teachers:  make([][]TeacherID, n),
		Pins:      make([]SlotID, n),
		index:     make(map[CourseID]int, n),
		words:     (n + 63) / 64,
		neighbors: make([][]int32, n),
	}
	g.bits = make([]uint64, n*g.words)
	for i, id := range ids {
		g.index[id] = i
	}
	return g
}

// Len returns the vertex count.
func (g *ConflictGraph) Len() int { return len(g.CourseIDs) }

// Vertex resolves a course id to its dense index.
func (g *ConflictGraph) Vertex(id CourseID) (int, bool) {
	v, ok := g.index[id]
	return v, ok
}

// AddEdge records an undirected conflict between two vertices.
func (g *ConflictGraph) AddEdge(u, v int) {
	if u == v || g.Adjacent(u, v) {
		return
	}
	g.bits[u*g.words+v/64] |= 1 << (uint(v) % 64)
	g.bits[v*g.words+u/64] |= 1 << (uint(u) % 64)
	g.neighbors[u] = append(g.neighbors[u], int32(v))
	g.neighbors[v] = append(g.neighbors[v], int32(u))
}

// Adjacent reports whether two vertices share at least one student.
func (g *ConflictGraph) Adjacent(u, v int) bool {
	return g.bits[u*g.words+v/64]&(1<<(uint(v)%64)) != 0
}

// Neighbors returns the adjacency list of a vertex. Callers must not
// mutate the returned slice.
func (g *ConflictGraph) Neighbors(v int) []int32 { return g.neighbors[v] }

// Degree returns the number of conflicting courses for a vertex.
func (g *ConflictGraph) Degree(v int) int { return len(g.neighbors[v]) }

// Components returns the connected components as sorted vertex lists,
// ordered by their smallest vertex. Components are fully independent
// coloring subproblems.
func (g *ConflictGraph) Components() [][]int32 {
	seen := make([]bool, g.Len())
	var comps [][]int32
	for v := 0; v < g.Len(); v++ {
		if seen[v] {
			continue
		}
		comp := []int32{int32(v)}
		seen[v] = true
		for i := 0; i < len(comp); i++ {
			for _, w := range g.neighbors[comp[i]] {
				if !seen[w] {
					seen[w] = true
					comp = append(comp, w)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		comps = append(comps, comp)
	}
	return comps
}
