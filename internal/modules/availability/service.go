package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"machrent/internal/domain"
)

var ErrInvalidRange = errors.New("invalid time range")

// BlockReason tags why an interval is unavailable on the calendar.
type BlockReason string

const (
	ReasonReserved    BlockReason = "reserved"
	ReasonBlocked     BlockReason = "blocked"
	ReasonMaintenance BlockReason = "maintenance"
)

// BlockedInterval is one entry of a resource's merged calendar.
type BlockedInterval struct {
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Reason BlockReason `json:"reason"`
}

type Service struct {
	reservations ReservationReader
	blackouts    BlackoutReader
}

func NewService(reservations ReservationReader, blackouts BlackoutReader) *Service {
	return &Service{reservations: reservations, blackouts: blackouts}
}

// IsAvailable reports whether the [start, end] window is free of
// confirmed and in-progress reservations. Boundaries are inclusive: a
// window beginning exactly when another ends still conflicts.
//
// Owner blackout ranges do not block here; they are surfaced through
// Calendar only. Read-only, no side effects.
func (s *Service) IsAvailable(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (bool, error) {
	if !end.After(start) {
		return false, ErrInvalidRange
	}
	cnt, err := s.reservations.CountOverlapping(ctx, resourceID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return cnt == 0, nil
}

// Calendar returns every blocked interval of a resource: blocking
// reservations plus owner blackouts, sorted by start. Intervals with
// the same reason are coalesced when they touch or overlap.
func (s *Service) Calendar(ctx context.Context, resourceID int64) ([]BlockedInterval, error) {
	reservations, err := s.reservations.BlockingWindows(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	blackouts, err := s.blackouts.Blackouts(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	intervals := make([]BlockedInterval, 0, len(reservations)+len(blackouts))
	for _, r := range reservations {
		intervals = append(intervals, BlockedInterval{Start: r.StartTime, End: r.EndTime, Reason: ReasonReserved})
	}
	for _, b := range blackouts {
		reason := ReasonBlocked
		if b.Kind == domain.BlackoutMaintenance {
			reason = ReasonMaintenance
		}
		intervals = append(intervals, BlockedInterval{Start: b.Start, End: b.End, Reason: reason})
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
	return coalesce(intervals), nil
}

func coalesce(sorted []BlockedInterval) []BlockedInterval {
	out := make([]BlockedInterval, 0, len(sorted))
	for _, iv := range sorted {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Reason == iv.Reason && !iv.Start.After(last.End) {
				if iv.End.After(last.End) {
					last.End = iv.End
				}
				continue
			}
		}
		out = append(out, iv)
	}
	return out
}
