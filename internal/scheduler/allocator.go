package scheduler

import (
	"sort"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// AllocateRooms partitions rooms among each slot's courses with a
// first-fit-decreasing packing: courses by descending enrollment are
// packed into rooms by descending capacity. A course is split across
// rooms only when no single room can hold it. Fails with a
// CapacityError naming the slot and shortfall when a slot's aggregate
// seats cannot cover its combined enrollment.
func AllocateRooms(assignment *model.ScheduleAssignment, graph *model.ConflictGraph, catalog *Catalog) (*model.RoomPlan, error) {
	if assignment == nil || graph == nil || catalog == nil {
		panic("scheduler: AllocateRooms called with nil input")
	}

	bySlot := make(map[model.SlotID][]int)
	for _, id := range assignment.Courses() {
		v, ok := graph.Vertex(id)
		if !ok {
			continue
		}
		slot := assignment.Slots[id]
		bySlot[slot] = append(bySlot[slot], v)
	}
	slotOrder := make([]model.SlotID, 0, len(bySlot))
	for slot := range bySlot {
		slotOrder = append(slotOrder, slot)
	}
	sort.Slice(slotOrder, func(i, j int) bool { return slotOrder[i] < slotOrder[j] })

	rooms := catalog.RoomsByDescendingCapacity()
	plan := model.NewRoomPlan()
	free := make([]int, len(rooms))

	for _, slot := range slotOrder {
		courses := bySlot[slot]
		sort.Slice(courses, func(i, j int) bool {
			if graph.Seats[courses[i]] != graph.Seats[courses[j]] {
				return graph.Seats[courses[i]] > graph.Seats[courses[j]]
			}
			return graph.CourseIDs[courses[i]] < graph.CourseIDs[courses[j]]
		})

		need := 0
		for _, v := range courses {
			need += graph.Seats[v]
		}
		if need > catalog.TotalSeats() {
			return nil, &CapacityError{Slot: slot, Shortfall: need - catalog.TotalSeats()}
		}

		for i, r := range rooms {
			free[i] = r.Capacity
		}
		for _, v := range courses {
			remaining := graph.Seats[v]
			if remaining == 0 {
				continue
			}
			// First fit: the first room (largest-first) holding the
			// course whole.
			fit := -1
			for i := range rooms {
				if free[i] >= remaining {
					fit = i
					break
				}
			}
			if fit >= 0 {
				free[fit] -= remaining
				plan.Add(slot, graph.CourseIDs[v], model.SeatBlock{Room: rooms[fit].ID, Seats: remaining})
				continue
			}
			// Split across rooms, largest remaining first.
			for i := range rooms {
				if remaining == 0 {
					break
				}
				if free[i] == 0 {
					continue
				}
				take := free[i]
				if take > remaining {
					take = remaining
				}
				free[i] -= take
				remaining -= take
				plan.Add(slot, graph.CourseIDs[v], model.SeatBlock{Room: rooms[i].ID, Seats: take})
			}
			if remaining > 0 {
				return nil, &CapacityError{Slot: slot, Shortfall: remaining}
			}
		}
	}
	return plan, nil
}
