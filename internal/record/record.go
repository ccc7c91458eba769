package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Marker is the value an action column carries when it is set.
const Marker = "x"

// Normalized event status values.
const (
	StatusAvailable = "available"
	StatusFull      = "full"
	StatusPassed    = "passed"
	StatusUnknown   = "unknown"
)

// Normalized member status values.
const (
	MemberSignedUp   = "signed up"
	MemberNotSigned  = "not signed up"
	MemberWaitlisted = "waitlisted"
	MemberCanceled   = "canceled"
	MemberUnknown    = "unknown"
)

// Record is one normalized event. Nil pointer fields mean the source text was
// absent or unparseable. Street/City/State/Zip and RawAddress are mutually
// exclusive: a resolved address clears RawAddress and vice versa.
type Record struct {
	// Action markers. At most one of Attending/WaitList/Cancel is non-nil
	// for a record at any time; Attending is excluded by the other two.
	Attending *string
	SignUp    *string
	WaitList  *string
	Cancel    *string

	EventStatus  string
	MemberStatus string

	EventName     string
	EventLocation string

	EventDay     *string
	EventDate    *time.Time
	SignupBefore *time.Time
	CancelBefore *time.Time

	EventCost *decimal.Decimal
	EventTax  *decimal.Decimal
	VenueCost *decimal.Decimal

	SpotsLeft *int
	Attendees *int
	Limit     *int

	DurationHours *decimal.Decimal

	DistFromHome *decimal.Decimal
	TimeFromHome *decimal.Decimal
	DistFromWork *decimal.Decimal
	TimeFromWork *decimal.Decimal

	Street *string
	City   *string
	State  *string
	Zip    *string

	Phone      *string
	RawAddress *string

	Host   string
	Attire string

	Sitename string
	URL      string
}

// Ptr returns a pointer to v. Records use pointer fields for nullable
// columns, and literal values need a home before they can be addressed.
func Ptr[T any](v T) *T {
	return &v
}
