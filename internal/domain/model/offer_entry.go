package model

import (
	"time"
)

// ValidityWindow is how long a newly issued code stays redeemable.
const ValidityWindow = 30 * 24 * time.Hour

// OfferEntry represents a single-use promotional code issued to a phone number.
type OfferEntry struct {
	ID          int64
	PhoneNumber string
	Code        string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
	UsedAt      *time.Time // Pointer to allow for NULL
}

// EntryStatus classifies an entry relative to a point in time.
type EntryStatus string

const (
	StatusValid   EntryStatus = "valid"
	StatusUsed    EntryStatus = "already_used"
	StatusExpired EntryStatus = "expired"
)

// NewOfferEntry creates an unused entry with the fixed 30-day validity window.
func NewOfferEntry(phoneNumber, code string, now time.Time) *OfferEntry {
	return &OfferEntry{
		PhoneNumber: phoneNumber,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ValidityWindow),
		Used:        false,
	}
}

// StatusAt classifies the entry. Used takes precedence over expired: an entry
// that was redeemed and later passed its expiry still reports already_used.
// The expiry boundary is closed: ExpiresAt equal to now counts as expired.
func (e *OfferEntry) StatusAt(now time.Time) EntryStatus {
	if e.Used {
		return StatusUsed
	}
	if !e.ExpiresAt.After(now) {
		return StatusExpired
	}
	return StatusValid
}

// Active reports whether the entry is unused and not yet expired.
func (e *OfferEntry) Active(now time.Time) bool {
	return e.StatusAt(now) == StatusValid
}

// EntryStats are the aggregate counts shown on the staff dashboard.
type EntryStats struct {
	Total   int
	Active  int
	Used    int
	Expired int
}
