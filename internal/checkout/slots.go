package checkout

import (
	"fmt"
	"slices"
	"time"

	"bakery-storefront/internal/models"
)

// DateLayout is the ISO calendar date form used for pickup dates
const DateLayout = "2006-01-02"

const slotLayout = "03:04 PM"

// PickupSlots are the store's daily collection windows, in order
var PickupSlots = []string{
	"10:00 AM",
	"11:00 AM",
	"12:00 PM",
	"01:00 PM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
	"05:00 PM",
	"06:00 PM",
}

// SlotHour converts a slot label to its 24-hour clock hour.
// 12 AM is hour 0, 12 PM stays 12, other PM hours add 12.
func SlotHour(label string) (int, error) {
	t, err := time.Parse(slotLayout, label)
	if err != nil {
		return 0, fmt.Errorf("invalid slot label %q: %w", label, err)
	}
	return t.Hour(), nil
}

// ParsePickupDate parses an ISO date in the store's location
func ParsePickupDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidPickupDate, date)
	}
	return d, nil
}

// AvailableSlots returns the slots that can still be booked on date given the
// current time. Future dates get every slot; today only gets slots whose hour
// is strictly after the current hour. Past dates get none.
func AvailableSlots(date, now time.Time) []string {
	switch compareDays(date, now) {
	case 1:
		return slices.Clone(PickupSlots)
	case 0:
		available := make([]string, 0, len(PickupSlots))
		for _, label := range PickupSlots {
			hour, err := SlotHour(label)
			if err != nil {
				continue
			}
			if hour > now.Hour() {
				available = append(available, label)
			}
		}
		return available
	default:
		return []string{}
	}
}

// IsPastDate reports whether date falls on a calendar day before now
func IsPastDate(date, now time.Time) bool {
	return compareDays(date, now) < 0
}

// compareDays compares the calendar days of a and b, using b's location for both
func compareDays(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	dayA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return dayA.Compare(dayB)
}
