package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "wedding-guest-list/pkg/app_errors"
)

// Side is the half of the wedding that invited a guest.
type Side string

const (
	SideGroom Side = "groom"
	SideBride Side = "bride"
)

func (s Side) IsValid() bool {
	switch s {
	case SideGroom, SideBride:
		return true
	}
	return false
}

// Attendance is the RSVP expectation for a guest, not a confirmed count.
type Attendance string

const (
	AttendanceLikely   Attendance = "likely"
	AttendanceUnlikely Attendance = "unlikely"
)

func (a Attendance) IsValid() bool {
	switch a {
	case AttendanceLikely, AttendanceUnlikely:
		return true
	}
	return false
}

// Guest is one named party of one or more attendees.
type Guest struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Count      int        `json:"count" db:"count"`
	Side       Side       `json:"side" db:"side"`
	Attendance Attendance `json:"attendance" db:"attendance"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// MaxGuestCount is the largest party a single guest entry may hold.
const MaxGuestCount = math.MaxInt32

// GuestInput holds the mutable fields of a guest, used by both create and update.
type GuestInput struct {
	Name       string     `json:"name" form:"name"`
	Count      int        `json:"count" form:"count"`
	Side       Side       `json:"side" form:"side"`
	Attendance Attendance `json:"attendance" form:"attendance"`
}

// Normalize trims surrounding whitespace from the name.
func (in GuestInput) Normalize() GuestInput {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

// Validate reports the first violated invariant wrapped in ErrConstraintViolation.
func (in GuestInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name must not be empty", apperrors.ErrConstraintViolation)
	}
	if in.Count < 1 || in.Count > MaxGuestCount {
		return fmt.Errorf("%w: count must be between 1 and %d, got %d", apperrors.ErrConstraintViolation, MaxGuestCount, in.Count)
	}
	if !in.Side.IsValid() {
		return fmt.Errorf("%w: side must be groom or bride, got %q", apperrors.ErrConstraintViolation, in.Side)
	}
	if !in.Attendance.IsValid() {
		return fmt.Errorf("%w: attendance must be likely or unlikely, got %q", apperrors.ErrConstraintViolation, in.Attendance)
	}
	return nil
}

// Statistics are head counts derived from the current guest set.
// Likely and the side totals overlap; they are not a partition.
type Statistics struct {
	Total  int `json:"total"`
	Likely int `json:"likely"`
	Groom  int `json:"groom"`
	Bride  int `json:"bride"`
}

// Add folds one guest into the totals.
func (s *Statistics) Add(g *Guest) {
	s.Total += g.Count
	if g.Attendance == AttendanceLikely {
		s.Likely += g.Count
	}
	switch g.Side {
	case SideGroom:
		s.Groom += g.Count
	case SideBride:
		s.Bride += g.Count
	}
}

// Dashboard is everything the overview page renders.
type Dashboard struct {
	Guests []*Guest   `json:"guests"`
	Stats  Statistics `json:"stats"`
}
