package scheduler

import (
	"fmt"
	"sort"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// BuildConflictGraph normalizes enrollment data into per-course student
// sets and derives the conflict graph: an edge joins two courses iff
// they share at least one student. Construction goes through an
// inverted student->courses index, so cost is linear in total
// enrollment rather than quadratic in courses. A course with zero
// students becomes an isolated vertex.
func BuildConflictGraph(courses []*model.Course, enrollments []*model.Enrollment) (*model.ConflictGraph, error) {
	if courses == nil {
		panic("scheduler: BuildConflictGraph called with nil courses")
	}

	sorted := make([]*model.Course, len(courses))
	copy(sorted, courses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	ids := make([]model.CourseID, len(sorted))
	for i, c := range sorted {
		if err := validate.Struct(c); err != nil {
			return nil, Wrap(err, ErrInvalidCourse.Code, fmt.Sprintf("invalid course %s", c.ID))
		}
		if i > 0 && sorted[i-1].ID == c.ID {
			return nil, Clone(ErrInvalidCourse, fmt.Sprintf("duplicate course id %s", c.ID))
		}
		ids[i] = c.ID
	}

	g := model.NewConflictGraph(ids)

	// Per-course student sets: course records first, enrollment rows
	// folded in on top.
	students := make([]map[model.StudentID]bool, len(sorted))
	for v, c := range sorted {
		students[v] = make(map[model.StudentID]bool, len(c.Students))
		for _, sid := range c.Students {
			students[v][sid] = true
		}
		g.Teachers[v] = c.Teachers
		g.Pins[v] = c.Pinned
	}
	for _, e := range enrollments {
		if e.Student == "" {
			return nil, Clone(ErrInvalidEnrollment, fmt.Sprintf("enrollment row for course %s has empty student id", e.Course))
		}
		v, ok := g.Vertex(e.Course)
		if !ok {
			return nil, Clone(ErrInvalidEnrollment, fmt.Sprintf("enrollment references unknown course %s", e.Course))
		}
		students[v][e.Student] = true
	}

	// Inverted index: student -> courses, in ascending course order so
	// edge insertion is deterministic.
	byStudent := make(map[model.StudentID][]int)
	for v := range sorted {
		g.Seats[v] = len(students[v])
		for sid := range students[v] {
			byStudent[sid] = append(byStudent[sid], v)
		}
	}
	keys := make([]model.StudentID, 0, len(byStudent))
	for sid := range byStudent {
		keys = append(keys, sid)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, sid := range keys {
		vs := byStudent[sid]
		sort.Ints(vs)
		for i := 0; i < len(vs); i++ {
			for j := i + 1; j < len(vs); j++ {
				g.AddEdge(vs[i], vs[j])
			}
		}
	}
	return g, nil
}

// greedyClique finds a large clique by expanding greedily from
// high-degree vertices. The result is a valid clique, so its size is a
// true lower bound on the number of slots any coloring needs, and its
// members are genuine mutual blockers worth naming in diagnostics.
// Returned vertices are sorted by ascending course id.
func greedyClique(g *model.ConflictGraph) []int {
	order := make([]int, g.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if g.Degree(order[i]) != g.Degree(order[j]) {
			return g.Degree(order[i]) > g.Degree(order[j])
		}
		return g.CourseIDs[order[i]] < g.CourseIDs[order[j]]
	})
	var best []int
	for _, seed := range order {
		if g.Degree(seed)+1 <= len(best) {
			break
		}
		clique := []int{seed}
		for _, v := range order {
			if v == seed {
				continue
			}
			ok := true
			for _, m := range clique {
				if !g.Adjacent(v, m) {
					ok = false
					break
				}
			}
			if ok {
				clique = append(clique, v)
			}
		}
		if len(clique) > len(best) {
			best = clique
		}
	}
	sort.Ints(best)
	return best
}
