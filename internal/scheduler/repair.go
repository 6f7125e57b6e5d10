package scheduler

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// Repair re-solves a prior assignment after a small input change. The
// graph and the scheduler's catalog must already reflect the delta.
// Strategy: keep everything valid, re-slot only the affected vertices
// against the fixed remainder, escalate to a component-local re-solve,
// and fall back to a full re-solve from scratch only if the local one
// fails. Unaffected courses keep their prior slots whenever either of
// the first two stages succeeds.
func (s *Scheduler) Repair(ctx context.Context, prior *model.ScheduleAssignment, graph *model.ConflictGraph, delta model.Delta, opts Options) (*model.ScheduleAssignment, error) {
	if prior == nil || graph == nil {
		panic("scheduler: Repair called with nil input")
	}

	effPins, blocked := s.resolvePins(graph, nil)
	if blocked != nil {
		return nil, &InfeasibleError{Report: &InfeasibleReport{
			Assigned: model.NewScheduleAssignment(),
			Blocked:  blocked,
		}}
	}

	deadline, hasDeadline := ctx.Deadline()
	assigned := s.carryOver(prior, graph)
	affected := s.invalidate(graph, assigned, effPins, opts.MinBreakSlots)
	s.logger.Debug("repairing assignment",
		zap.String("delta", delta.Kind.String()),
		zap.Int("affected", len(affected)))

	// Stage 1: per-vertex re-slot with the rest held fixed.
	var unplaced []int
	for _, v := range affected {
		if si, ok := s.reslot(graph, v, assigned, effPins, opts.MinBreakSlots); ok {
			assigned[v] = si
		} else {
			unplaced = append(unplaced, v)
		}
	}
	if len(unplaced) == 0 {
		return s.export(graph, assigned), nil
	}

	// Stage 2: bounded local re-solve of each conflicted component.
	comps := graph.Components()
	localOK := true
	for _, comp := range comps {
		if !containsAny(comp, unplaced) {
			continue
		}
		fixed := make(map[int]int)
		inComp := make(map[int]bool, len(comp))
		for _, v := range comp {
			inComp[int(v)] = true
		}
		for v, si := range assigned {
			if !inComp[v] {
				fixed[v] = si
			}
		}
		sub, report := s.solveSubset(ctx, graph, comp, fixed, effPins, opts, deadline, hasDeadline)
		if report != nil {
			localOK = false
			break
		}
		for _, v := range comp {
			delete(assigned, int(v))
		}
		for v, si := range sub {
			assigned[v] = si
		}
	}
	if localOK {
		return s.export(graph, assigned), nil
	}

	// Stage 3: full re-solve. Local repair failing does not prove
	// global infeasibility.
	s.logger.Debug("local repair failed, re-solving from scratch")
	return s.Schedule(ctx, graph, nil, opts)
}

// carryOver restricts the prior assignment to vertices and slots that
// still exist after the delta.
func (s *Scheduler) carryOver(prior *model.ScheduleAssignment, g *model.ConflictGraph) map[int]int {
	assigned := make(map[int]int, len(prior.Slots))
	for _, id := range prior.Courses() {
		v, ok := g.Vertex(id)
		if !ok {
			continue
		}
		si, ok := s.catalog.SlotIndex(prior.Slots[id])
		if !ok {
			continue
		}
		assigned[v] = si
	}
	return assigned
}

// invalidate unassigns every vertex whose carried-over slot violates a
// constraint, plus vertices the carry-over left unassigned. The result
// is the affected set, sorted by ascending course id.
func (s *Scheduler) invalidate(g *model.ConflictGraph, assigned map[int]int, effPins []int, minBreak int) []int {
	slots := s.catalog.SlotsByID()
	bad := make(map[int]bool)
	for v := 0; v < g.Len(); v++ {
		si, ok := assigned[v]
		if !ok {
			bad[v] = true
			continue
		}
		if effPins[v] >= 0 && effPins[v] != si {
			bad[v] = true
			continue
		}
		if slots[si].Fixed && effPins[v] < 0 {
			bad[v] = true
			continue
		}
		if effPins[v] < 0 && !s.teachersFreeAt(g, v, slots[si].ID) {
			bad[v] = true
			continue
		}
		for _, w32 := range g.Neighbors(v) {
			w := int(w32)
			sj, ok := assigned[w]
			if !ok {
				continue
			}
			if sj == si || (slots[si].SameDay(slots[sj]) && slots[si].Distance(slots[sj]) < minBreak) {
				bad[v] = true
				break
			}
		}
	}

	// Aggregate seat overflow: shed the largest courses of an
	// oversubscribed slot until it fits again.
	reserved := make([]int, len(slots))
	for v, si := range assigned {
		if !bad[v] {
			reserved[si] += g.Seats[v]
		}
	}
	for si := range reserved {
		for reserved[si] > s.catalog.TotalSeats() {
			shed := -1
			for v, sj := range assigned {
				if bad[v] || sj != si {
					continue
				}
				if shed == -1 || g.Seats[v] > g.Seats[shed] ||
					(g.Seats[v] == g.Seats[shed] && g.CourseIDs[v] < g.CourseIDs[shed]) {
					shed = v
				}
			}
			if shed == -1 {
				break
			}
			bad[shed] = true
			reserved[si] -= g.Seats[shed]
		}
	}

	affected := make([]int, 0, len(bad))
	for v := range bad {
		delete(assigned, v)
		affected = append(affected, v)
	}
	sort.Slice(affected, func(i, j int) bool {
		return g.CourseIDs[affected[i]] < g.CourseIDs[affected[j]]
	})
	return affected
}

// reslot finds the first feasible slot (ascending slot id) for v
// against the current assignment held fixed.
func (s *Scheduler) reslot(g *model.ConflictGraph, v int, assigned map[int]int, effPins []int, minBreak int) (int, bool) {
	slots := s.catalog.SlotsByID()
	reserved := make([]int, len(slots))
	for w, si := range assigned {
		reserved[si] += g.Seats[w]
	}
	for si, slot := range slots {
		if effPins[v] >= 0 && effPins[v] != si {
			continue
		}
		if slot.Fixed && effPins[v] < 0 {
			continue
		}
		if effPins[v] < 0 && !s.teachersFreeAt(g, v, slot.ID) {
			continue
		}
		if g.Seats[v] > s.catalog.TotalSeats()-reserved[si] {
			continue
		}
		ok := true
		for _, w32 := range g.Neighbors(v) {
			sj, has := assigned[int(w32)]
			if !has {
				continue
			}
			if sj == si || (slot.SameDay(slots[sj]) && slot.Distance(slots[sj]) < minBreak) {
				ok = false
				break
			}
		}
		if ok {
			return si, true
		}
	}
	return 0, false
}

func (s *Scheduler) teachersFreeAt(g *model.ConflictGraph, v int, slot model.SlotID) bool {
	for _, t := range g.Teachers[v] {
		if !s.catalog.IsTeacherAvailable(t, slot) {
			return false
		}
	}
	return true
}

func (s *Scheduler) export(g *model.ConflictGraph, assigned map[int]int) *model.ScheduleAssignment {
	out := model.NewScheduleAssignment()
	for v, si := range assigned {
		out.Slots[g.CourseIDs[v]] = s.catalog.SlotsByID()[si].ID
	}
	return out
}

func containsAny(comp []int32, vs []int) bool {
	for _, v := range vs {
		for _, w := range comp {
			if int(w) == v {
				return true
			}
		}
	}
	return false
}
