package scheduler

import (
	"fmt"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// Validate checks a computed datesheet for constraint violations.
// Returns false and a message for invalid schedules.
func Validate(graph *model.ConflictGraph, catalog *Catalog, assignment *model.ScheduleAssignment, plan *model.RoomPlan, minBreak int) (bool, string) {
	var message string
	var valid bool = true
	var hasSlotCollision bool = false
	var hasBreakViolation bool = false
	var hasRoomOverflow bool = false

	unassignedCount := 0
	for _, id := range graph.CourseIDs {
		if _, ok := assignment.Slots[id]; !ok {
			unassignedCount++
			message += fmt.Sprintf("    %s is unassigned\n", id)
		}
	}
	if unassignedCount > 0 {
		valid = false
		message = fmt.Sprintf("- There are %d unassigned courses:\n", unassignedCount) + message
	}
	allAssigned := unassignedCount == 0

	for u := 0; u < graph.Len(); u++ {
		su, ok := slotOf(catalog, assignment, graph.CourseIDs[u])
		if !ok {
			continue
		}
		if graph.Pins[u] != "" && assignment.Slots[graph.CourseIDs[u]] != graph.Pins[u] {
			valid = false
			message += fmt.Sprintf("- %s placed away from its pinned slot %s\n", graph.CourseIDs[u], graph.Pins[u])
		}
		for _, w := range graph.Neighbors(u) {
			v := int(w)
			if v <= u {
				continue
			}
			sv, ok := slotOf(catalog, assignment, graph.CourseIDs[v])
			if !ok {
				continue
			}
			if su.ID == sv.ID {
				valid = false
				hasSlotCollision = true
				message += fmt.Sprintf("- Conflicting courses %s and %s share slot %s\n",
					graph.CourseIDs[u], graph.CourseIDs[v], su.ID)
			} else if su.SameDay(sv) && su.Distance(sv) < minBreak {
				valid = false
				hasBreakViolation = true
				message += fmt.Sprintf("- Courses %s and %s break the minimum gap on day %d\n",
					graph.CourseIDs[u], graph.CourseIDs[v], su.Day)
			}
		}
	}

	if plan != nil {
		for slot, courses := range plan.Blocks {
			used := make(map[model.RoomID]int)
			for _, blocks := range courses {
				for _, b := range blocks {
					used[b.Room] += b.Seats
				}
			}
			for _, room := range catalog.RoomsByDescendingCapacity() {
				if used[room.ID] > room.Capacity {
					valid = false
					hasRoomOverflow = true
					message += fmt.Sprintf("- Room %s oversubscribed in slot %s (%d/%d)\n",
						room.ID, slot, used[room.ID], room.Capacity)
				}
			}
		}
		for _, id := range assignment.Courses() {
			v, ok := graph.Vertex(id)
			if !ok || graph.Seats[v] == 0 {
				continue
			}
			seated := 0
			for _, b := range plan.CourseBlocks(assignment.Slots[id], id) {
				seated += b.Seats
			}
			if seated != graph.Seats[v] {
				valid = false
				hasRoomOverflow = true
				message += fmt.Sprintf("- %s has %d of %d students seated\n", id, seated, graph.Seats[v])
			}
		}
	}

	if hasRoomOverflow {
		message = "[FAIL]: Room capacity check.\n" + message
	} else {
		message = "[  OK]: Room capacity check.\n" + message
	}
	if hasBreakViolation {
		message = "[FAIL]: Break distance check.\n" + message
	} else {
		message = "[  OK]: Break distance check.\n" + message
	}
	if hasSlotCollision {
		message = "[FAIL]: Slot collision check.\n" + message
	} else {
		message = "[  OK]: Slot collision check.\n" + message
	}
	if !allAssigned {
		message = "[FAIL]: Course has slot check.\n" + message
	} else {
		message = "[  OK]: Course has slot check.\n" + message
	}

	return valid, message
}

func slotOf(catalog *Catalog, assignment *model.ScheduleAssignment, id model.CourseID) (*model.TimeSlot, bool) {
	sid, ok := assignment.Slots[id]
	if !ok {
		return nil, false
	}
	return catalog.SlotByID(sid)
}
