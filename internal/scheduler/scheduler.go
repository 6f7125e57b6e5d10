package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// Options control one scheduling run.
type Options struct {
	// MinBreakSlots is the minimum period distance between two
	// same-day exams of the same student.
	MinBreakSlots int
	// MaxSteps bounds the number of candidate attempts. Zero means
	// unbounded; the context deadline still applies.
	MaxSteps int64
	// Parallel searches disjoint conflict-graph components in
	// separate goroutines.
	Parallel bool
}

// Scheduler assigns each course a slot via backtracking search over the
// conflict graph, equivalent to graph coloring with colors = slots plus
// side constraints. One Scheduler is bound to one catalog snapshot;
// concurrent runs over different catalogs share no state.
type Scheduler struct {
	catalog *Catalog
	logger  *zap.Logger
}

// New wires a scheduler to a catalog. A nil catalog is a programming
// error in the caller.
func New(catalog *Catalog, logger *zap.Logger) *Scheduler {
	if catalog == nil {
		panic("scheduler: New called with nil catalog")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{catalog: catalog, logger: logger}
}

// Schedule finds a total course->slot assignment or reports why none
// exists. Pins passed here override pins carried on the graph. The
// context deadline is the time budget; on exceeding it (or MaxSteps)
// the best partial assignment found is returned inside an
// InfeasibleError with Partial set.
func (s *Scheduler) Schedule(ctx context.Context, graph *model.ConflictGraph, pins map[model.CourseID]model.SlotID, opts Options) (*model.ScheduleAssignment, error) {
	if graph == nil {
		panic("scheduler: Schedule called with nil graph")
	}

	effPins, blocked := s.resolvePins(graph, pins)
	if blocked != nil {
		return nil, &InfeasibleError{Report: &InfeasibleReport{
			Assigned: model.NewScheduleAssignment(),
			Blocked:  blocked,
		}}
	}

	if clique := greedyClique(graph); len(clique) > s.catalog.SlotCount() {
		return nil, s.insufficientSlots(graph, clique)
	}

	deadline, hasDeadline := ctx.Deadline()
	start := time.Now()

	comps := graph.Components()
	var assigned map[int]int
	var report *InfeasibleReport
	if opts.Parallel && len(comps) > 1 {
		assigned, report = s.solveParallel(ctx, graph, comps, effPins, nil, opts, deadline, hasDeadline)
	} else {
		all := allVertices(graph)
		assigned, report = s.solveSubset(ctx, graph, all, nil, effPins, opts, deadline, hasDeadline)
	}
	if report != nil {
		s.logger.Debug("schedule infeasible",
			zap.Bool("partial", report.Partial),
			zap.Int64("steps", report.Steps),
			zap.Duration("elapsed", time.Since(start)))
		return nil, &InfeasibleError{Report: report}
	}

	out := model.NewScheduleAssignment()
	for v, si := range assigned {
		out.Slots[graph.CourseIDs[v]] = s.catalog.SlotsByID()[si].ID
	}
	s.logger.Debug("schedule complete",
		zap.Int("courses", len(out.Slots)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// insufficientSlots reports a clique larger than the slot count: the
// run is infeasible before any search, and every clique member blocks
// every other.
func (s *Scheduler) insufficientSlots(g *model.ConflictGraph, clique []int) *InfeasibleError {
	ids := make([]string, len(clique))
	blocked := make([]BlockedCourse, len(clique))
	for i, v := range clique {
		ids[i] = string(g.CourseIDs[v])
		bc := BlockedCourse{Course: g.CourseIDs[v]}
		for _, u := range clique {
			if u == v {
				continue
			}
			bc.Reasons = append(bc.Reasons, BlockReason{
				Constraint:  ConstraintNeighborConflict,
				Conflicting: g.CourseIDs[u],
			})
		}
		blocked[i] = bc
	}
	return &InfeasibleError{
		Report: &InfeasibleReport{
			Assigned: model.NewScheduleAssignment(),
			Blocked:  blocked,
		},
		Err: Clone(ErrInsufficientSlots, fmt.Sprintf(
			"%d mutually conflicting courses (%s) but only %d slots",
			len(clique), strings.Join(ids, ", "), s.catalog.SlotCount())),
	}
}

// resolvePins merges override pins with the graph's own, returning a
// per-vertex slot index (-1 = unpinned). A pin naming an unknown slot
// blocks its course outright.
func (s *Scheduler) resolvePins(g *model.ConflictGraph, pins map[model.CourseID]model.SlotID) ([]int, []BlockedCourse) {
	eff := make([]int, g.Len())
	var blocked []BlockedCourse
	for v := range eff {
		eff[v] = -1
		slot := g.Pins[v]
		if override, ok := pins[g.CourseIDs[v]]; ok {
			slot = override
		}
		if slot == "" {
			continue
		}
		si, ok := s.catalog.SlotIndex(slot)
		if !ok {
			blocked = append(blocked, BlockedCourse{
				Course:  g.CourseIDs[v],
				Reasons: []BlockReason{{Slot: slot, Constraint: ConstraintPinnedElsewhere}},
			})
			continue
		}
		eff[v] = si
	}
	return eff, blocked
}

func allVertices(g *model.ConflictGraph) []int32 {
	vs := make([]int32, g.Len())
	for i := range vs {
		vs[i] = int32(i)
	}
	return vs
}

// solveParallel launches one search per component, each against the
// full seat pool, and joins results in component order. Optimistic seat
// accounting can oversubscribe a slot across components; in that case
// one deterministic sequential re-solve with a shared ledger decides.
func (s *Scheduler) solveParallel(ctx context.Context, g *model.ConflictGraph, comps [][]int32, effPins []int, fixed map[int]int, opts Options, deadline time.Time, hasDeadline bool) (map[int]int, *InfeasibleReport) {
	type result struct {
		assigned map[int]int
		report   *InfeasibleReport
	}
	results := make([]result, len(comps))
	var wg sync.WaitGroup
	for i, comp := range comps {
		wg.Add(1)
		go func(i int, comp []int32) {
			defer wg.Done()
			a, r := s.solveSubset(ctx, g, comp, fixed, effPins, opts, deadline, hasDeadline)
			results[i] = result{assigned: a, report: r}
		}(i, comp)
	}
	wg.Wait()

	merged := make(map[int]int)
	var failure *InfeasibleReport
	for _, r := range results {
		if r.report != nil {
			if failure == nil {
				failure = &InfeasibleReport{Assigned: model.NewScheduleAssignment()}
			}
			failure.Partial = failure.Partial || r.report.Partial
			failure.Steps += r.report.Steps
			failure.Blocked = append(failure.Blocked, r.report.Blocked...)
			for id, slot := range r.report.Assigned.Slots {
				failure.Assigned.Slots[id] = slot
			}
			continue
		}
		for v, si := range r.assigned {
			merged[v] = si
		}
	}
	if failure != nil {
		for v, si := range merged {
			failure.Assigned.Slots[g.CourseIDs[v]] = s.catalog.SlotsByID()[si].ID
		}
		return nil, failure
	}

	reserved := make([]int, s.catalog.SlotCount())
	over := false
	for v, si := range merged {
		reserved[si] += g.Seats[v]
		if reserved[si] > s.catalog.TotalSeats() {
			over = true
		}
	}
	if !over {
		return merged, nil
	}
	s.logger.Debug("parallel join oversubscribed a slot, re-solving sequentially")
	return s.solveSubset(ctx, g, allVertices(g), fixed, effPins, opts, deadline, hasDeadline)
}

// trailEntry records one pruned domain word for undo.
type trailEntry struct {
	v   int
	w   int
	old uint64
}

type search struct {
	g        *model.ConflictGraph
	cat      *Catalog
	minBreak int

	slotWords int
	dom       []uint64 // vertex-major domain bitsets
	masks     []uint64 // per-slot neighbor conflict masks
	assigned  []int
	pins      []int // effective pin slot index, -1 unpinned
	inSubset  []bool
	reserved  []int
	order     []int
	trail     []trailEntry

	steps       int64
	maxSteps    int64
	deadline    time.Time
	hasDeadline bool
	outOfBudget bool

	bestDepth   int
	bestSlots   map[int]int
	bestBlocked []BlockedCourse
}

// solveSubset runs one backtracking search over the given vertices.
// Vertices outside the subset that appear in fixed are honored as
// immovable assignments (the repair engine's "hold the rest" mode).
func (s *Scheduler) solveSubset(ctx context.Context, g *model.ConflictGraph, vertices []int32, fixed map[int]int, effPins []int, opts Options, deadline time.Time, hasDeadline bool) (map[int]int, *InfeasibleReport) {
	st := newSearch(g, s.catalog, opts, deadline, hasDeadline)
	if err := ctx.Err(); err != nil {
		st.outOfBudget = true
	}
	st.prepare(vertices, fixed, effPins)

	if !st.outOfBudget && st.solve(0) {
		out := make(map[int]int, len(vertices))
		for _, v := range vertices {
			out[int(v)] = st.assigned[v]
		}
		return out, nil
	}
	return nil, st.report()
}

func newSearch(g *model.ConflictGraph, cat *Catalog, opts Options, deadline time.Time, hasDeadline bool) *search {
	n := g.Len()
	slotCount := cat.SlotCount()
	st := &search{
		g:           g,
		cat:         cat,
		minBreak:    opts.MinBreakSlots,
		slotWords:   (slotCount + 63) / 64,
		assigned:    make([]int, n),
		inSubset:    make([]bool, n),
		reserved:    make([]int, slotCount),
		maxSteps:    opts.MaxSteps,
		deadline:    deadline,
		hasDeadline: hasDeadline,
		bestDepth:   -1,
	}
	st.dom = make([]uint64, n*st.slotWords)
	for v := range st.assigned {
		st.assigned[v] = -1
	}
	st.buildMasks()
	return st
}

// buildMasks precomputes, per slot, the bitset of slots a neighbor may
// not take once that slot is used: the slot itself plus every same-day
// slot closer than the minimum break distance.
func (st *search) buildMasks() {
	slots := st.cat.SlotsByID()
	st.masks = make([]uint64, len(slots)*st.slotWords)
	for si, a := range slots {
		m := st.masks[si*st.slotWords : (si+1)*st.slotWords]
		for sj, b := range slots {
			if si == sj || (a.SameDay(b) && a.Distance(b) < st.minBreak) {
				m[sj/64] |= 1 << (uint(sj) % 64)
			}
		}
	}
}

func (st *search) prepare(vertices []int32, fixed map[int]int, effPins []int) {
	st.pins = effPins
	slots := st.cat.SlotsByID()
	for _, v32 := range vertices {
		v := int(v32)
		st.inSubset[v] = true
		d := st.dom[v*st.slotWords : (v+1)*st.slotWords]
		if pin := effPins[v]; pin >= 0 {
			// Administrative overrides skip the fixed-slot and
			// teacher-availability filters.
			d[pin/64] |= 1 << (uint(pin) % 64)
			continue
		}
		for si, slot := range slots {
			if slot.Fixed {
				continue
			}
			if !st.teachersFree(v, slot.ID) {
				continue
			}
			d[si/64] |= 1 << (uint(si) % 64)
		}
	}

	// Immovable assignments from outside the subset constrain domains
	// and the seat ledger.
	fixedOrder := make([]int, 0, len(fixed))
	for v := range fixed {
		fixedOrder = append(fixedOrder, v)
	}
	sort.Ints(fixedOrder)
	for _, v := range fixedOrder {
		si := fixed[v]
		st.assigned[v] = si
		st.reserved[si] += st.g.Seats[v]
		st.pruneNeighbors(v, si)
	}

	// Variable ordering: pinned first, then most-constrained-first
	// (descending degree), ties by ascending course id.
	st.order = st.order[:0]
	for _, v32 := range vertices {
		if _, isFixed := fixed[int(v32)]; !isFixed {
			st.order = append(st.order, int(v32))
		}
	}
	g := st.g
	sort.Slice(st.order, func(i, j int) bool {
		a, b := st.order[i], st.order[j]
		ap, bp := effPins[a] >= 0, effPins[b] >= 0
		if ap != bp {
			return ap
		}
		if g.Degree(a) != g.Degree(b) {
			return g.Degree(a) > g.Degree(b)
		}
		return g.CourseIDs[a] < g.CourseIDs[b]
	})
}

func (st *search) teachersFree(v int, slot model.SlotID) bool {
	for _, t := range st.g.Teachers[v] {
		if !st.cat.IsTeacherAvailable(t, slot) {
			return false
		}
	}
	return true
}

func (st *search) budgetExceeded() bool {
	if st.maxSteps > 0 && st.steps >= st.maxSteps {
		return true
	}
	if st.hasDeadline && st.steps&255 == 0 && time.Now().After(st.deadline) {
		return true
	}
	return false
}

func (st *search) solve(pos int) bool {
	if pos == len(st.order) {
		return true
	}
	v := st.order[pos]
	d := st.dom[v*st.slotWords : (v+1)*st.slotWords]
	slotCount := st.cat.SlotCount()
	for si := 0; si < slotCount; si++ {
		if d[si/64]&(1<<(uint(si)%64)) == 0 {
			continue
		}
		st.steps++
		if st.budgetExceeded() {
			st.outOfBudget = true
			st.noteBudget()
			return false
		}
		// Room-capacity feasibility: aggregate unreserved seats for
		// the slot, not any specific room (partitioning is deferred
		// to allocation).
		if st.g.Seats[v] > st.cat.TotalSeats()-st.reserved[si] {
			continue
		}
		mark := len(st.trail)
		st.assigned[v] = si
		st.reserved[si] += st.g.Seats[v]
		wiped := st.pruneNeighbors(v, si)
		if wiped == -1 && st.solve(pos+1) {
			return true
		}
		if wiped != -1 {
			st.noteWipe(pos+1, wiped)
		}
		st.undo(mark)
		st.assigned[v] = -1
		st.reserved[si] -= st.g.Seats[v]
		if st.outOfBudget {
			return false
		}
	}
	st.noteFailure(pos, v)
	return false
}

// pruneNeighbors forward-checks: after assigning v the slot si, the
// conflict mask is removed from every unassigned neighbor's domain.
// Returns the first wiped-out vertex for fail-fast, -1 if none.
func (st *search) pruneNeighbors(v, si int) int {
	mask := st.masks[si*st.slotWords : (si+1)*st.slotWords]
	wiped := -1
	for _, w32 := range st.g.Neighbors(v) {
		w := int(w32)
		if !st.inSubset[w] || st.assigned[w] >= 0 {
			continue
		}
		d := st.dom[w*st.slotWords : (w+1)*st.slotWords]
		empty := true
		for k := range d {
			old := d[k]
			nw := old &^ mask[k]
			if nw != old {
				st.trail = append(st.trail, trailEntry{v: w, w: k, old: old})
				d[k] = nw
			}
			if nw != 0 {
				empty = false
			}
		}
		if empty && wiped == -1 {
			wiped = w
		}
	}
	return wiped
}

func (st *search) undo(mark int) {
	for i := len(st.trail) - 1; i >= mark; i-- {
		e := st.trail[i]
		st.dom[e.v*st.slotWords+e.w] = e.old
	}
	st.trail = st.trail[:mark]
}

func (st *search) snapshot() map[int]int {
	out := make(map[int]int)
	for v, si := range st.assigned {
		if si >= 0 && st.inSubset[v] {
			out[v] = si
		}
	}
	return out
}

func (st *search) noteBudget() {
	if st.bestSlots == nil || len(st.snapshot()) > len(st.bestSlots) {
		st.bestSlots = st.snapshot()
	}
}

func (st *search) noteFailure(pos, v int) {
	if pos <= st.bestDepth {
		return
	}
	st.bestDepth = pos
	st.bestSlots = st.snapshot()
	st.bestBlocked = st.analyze(v)
}

// noteWipe attributes a forward-checking wipeout to the neighbor whose
// domain emptied, while the triggering assignment is still in place.
func (st *search) noteWipe(depth, wiped int) {
	if depth <= st.bestDepth {
		return
	}
	st.bestDepth = depth
	st.bestSlots = st.snapshot()
	st.bestBlocked = st.analyze(wiped)
}

// analyze explains, slot by slot, why the course at vertex v cannot be
// placed against the current partial assignment. Used for diagnostics
// only; it rechecks the raw constraints rather than the pruned domain
// so every reason names its source.
func (st *search) analyze(v int) []BlockedCourse {
	g := st.g
	bc := BlockedCourse{Course: g.CourseIDs[v]}
	for si, slot := range st.cat.SlotsByID() {
		reason := BlockReason{Slot: slot.ID}
		switch {
		case st.pins[v] >= 0 && st.pins[v] != si:
			reason.Constraint = ConstraintPinnedElsewhere
		case st.neighborHolds(v, si) != -1:
			u := st.neighborHolds(v, si)
			reason.Constraint = ConstraintNeighborConflict
			reason.Conflicting = g.CourseIDs[u]
		case st.breakViolated(v, si) != -1:
			u := st.breakViolated(v, si)
			reason.Constraint = ConstraintBreakDistance
			reason.Conflicting = g.CourseIDs[u]
		case slot.Fixed && st.pins[v] < 0:
			reason.Constraint = ConstraintFixedSlot
		case st.blockedTeacher(v, slot.ID) != "":
			reason.Constraint = ConstraintTeacherUnavailable
			reason.Teacher = st.blockedTeacher(v, slot.ID)
		case g.Seats[v] > st.cat.TotalSeats()-st.reserved[si]:
			reason.Constraint = ConstraintSeatShortage
		default:
			// The slot is locally fine; the dead end lives deeper in
			// the tree. Leave it out of the report.
			continue
		}
		bc.Reasons = append(bc.Reasons, reason)
	}
	return []BlockedCourse{bc}
}

// neighborHolds returns the lowest assigned neighbor occupying the
// slot, -1 if none.
func (st *search) neighborHolds(v, si int) int {
	for u := 0; u < st.g.Len(); u++ {
		if u != v && st.assigned[u] == si && st.g.Adjacent(u, v) {
			return u
		}
	}
	return -1
}

// breakViolated returns the lowest assigned neighbor whose slot is on
// the same day and closer than the minimum break, -1 if none.
func (st *search) breakViolated(v, si int) int {
	slots := st.cat.SlotsByID()
	a := slots[si]
	for u := 0; u < st.g.Len(); u++ {
		if u == v || st.assigned[u] < 0 || !st.g.Adjacent(u, v) {
			continue
		}
		b := slots[st.assigned[u]]
		if st.assigned[u] != si && a.SameDay(b) && a.Distance(b) < st.minBreak {
			return u
		}
	}
	return -1
}

func (st *search) blockedTeacher(v int, slot model.SlotID) model.TeacherID {
	for _, t := range st.g.Teachers[v] {
		if !st.cat.IsTeacherAvailable(t, slot) {
			return t
		}
	}
	return ""
}

func (st *search) report() *InfeasibleReport {
	r := &InfeasibleReport{
		Partial:  st.outOfBudget,
		Assigned: model.NewScheduleAssignment(),
		Blocked:  st.bestBlocked,
		Steps:    st.steps,
	}
	for v, si := range st.bestSlots {
		r.Assigned.Slots[st.g.CourseIDs[v]] = st.cat.SlotsByID()[si].ID
	}
	return r
}
