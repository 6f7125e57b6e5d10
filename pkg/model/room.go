package model

import "strings"

// RoomID identifies an examination room.
type RoomID string

// Room is a seating resource available in every slot of the run.
// Features is reserved for future constraints (e.g. accessible).
type Room struct {
	ID          RoomID   `csv:"room_id" validate:"required"`
	Capacity    int      `csv:"capacity" validate:"min=1"`
	FeaturesSTR string   `csv:"features"`
	Features    []string `csv:"-"`
}

// ParseFeatures splits the raw pipe-separated feature column.
func (r *Room) ParseFeatures() {
	r.Features = r.Features[:0]
	for _, f := range strings.Split(r.FeaturesSTR, "|") {
		f = strings.TrimSpace(f)
		if f != "" {
			r.Features = append(r.Features, f)
		}
	}
}
