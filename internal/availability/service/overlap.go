package service

import "pitchside/pkg/model"

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. The four cases are spelled out so each maps to a
// concrete booking situation: starts inside, ends inside, encloses, enclosed.
// Ranges that merely touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	// a starts inside b
	if aStart >= bStart && aStart < bEnd {
		return true
	}
	// a ends strictly inside b
	if aEnd > bStart && aEnd < bEnd {
		return true
	}
	// a encloses b
	if aStart <= bStart && aEnd >= bEnd {
		return true
	}
	// b encloses a
	if bStart <= aStart && bEnd >= aEnd {
		return true
	}
	return false
}

// bookingRange parses a booking's window into grid minutes.
func bookingRange(b *model.Booking) (int, int, error) {
	start, err := model.ParseMinuteOfDay(b.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := model.ParseEndMinute(b.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// OverlapsActiveBooking reports whether [startMin,endMin) collocates with any
// active booking. Unparseable records are skipped; they cannot block.
func OverlapsActiveBooking(startMin, endMin int, bookings []*model.Booking) bool {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		bs, be, err := bookingRange(b)
		if err != nil {
			continue
		}
		if Overlaps(startMin, endMin, bs, be) {
			return true
		}
	}
	return false
}

// StartBlockedBy reports whether a single instant falls inside any active
// booking. Used to grey out start times before an end time is chosen.
func StartBlockedBy(startMin int, bookings []*model.Booking) bool {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		bs, be, err := bookingRange(b)
		if err != nil {
			continue
		}
		if startMin >= bs && startMin < be {
			return true
		}
	}
	return false
}
