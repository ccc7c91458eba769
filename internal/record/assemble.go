package record

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pfrederiksen/ea-events/internal/fetch"
	"github.com/pfrederiksen/ea-events/internal/geo"
	"github.com/pfrederiksen/ea-events/internal/parse"
)

// privacyNotice is boilerplate the site substitutes for member addresses; it
// is stripped before geocoding.
const privacyNotice = "We don't publish member addresses. Address emailed to those signed up"

// nonEventNames mark calendar entries that are not real events.
var nonEventNames = []string{"new member", "host meeting"}

// Assembler builds Records from fetched pages. It never fails a whole batch
// on a bad field: parse failures become nil fields and lookup failures are
// logged and recovered as nil.
type Assembler struct {
	geocoder geo.Geocoder
	home     string
	work     string
	now      func() time.Time
	log      *logrus.Logger
}

// NewAssembler wires the assembler to its geocoding collaborator and the
// configured home/work origin addresses.
func NewAssembler(geocoder geo.Geocoder, homeAddr, workAddr string, log *logrus.Logger) *Assembler {
	return &Assembler{
		geocoder: geocoder,
		home:     homeAddr,
		work:     workAddr,
		now:      time.Now,
		log:      log,
	}
}

// Assemble normalizes one event detail page (plus its signup page) into a
// Record. A nil result means the event was deliberately excluded; exclusions
// are logged at debug level, they are not errors.
//
// Exclusion predicates run in order, short-circuiting on the first match:
// non-event name, "no event" location, missing or past date, passed status,
// canceled member status, passed signup deadline.
func (a *Assembler) Assemble(ctx context.Context, link string, page, signup fetch.Page) *Record {
	name, location := splitNameLocation(page[fetch.FieldNameLocation])

	lowerName := strings.ToLower(name)
	for _, pattern := range nonEventNames {
		if strings.Contains(lowerName, pattern) {
			a.exclude(name, "non-event entry")
			return nil
		}
	}

	if strings.Contains(strings.ToLower(location), "no event") {
		a.exclude(name, "no event at location")
		return nil
	}

	day, date, ok := parse.DateTime(page[fetch.FieldDateTime])
	if !ok || date.Before(a.now()) {
		a.exclude(name, "event date missing or passed")
		return nil
	}

	status := normalizeStatus(page[fetch.FieldStatus])
	if status == StatusPassed {
		a.exclude(name, "status passed")
		return nil
	}

	member, attending := normalizeMemberStatus(page[fetch.FieldMemberStatus])
	if member == MemberCanceled {
		a.exclude(name, "member canceled")
		return nil
	}

	_, signupBefore, sbOK := parse.DateTime(page[fetch.FieldSignupBefore])
	if sbOK && signupBefore.Before(a.now()) {
		a.exclude(name, "signup deadline passed")
		return nil
	}

	_, cancelBefore, cbOK := parse.DateTime(page[fetch.FieldCancelBefore])

	rec := &Record{
		EventStatus:   status,
		MemberStatus:  member,
		EventName:     name,
		EventLocation: location,
		EventDay:      &day,
		EventDate:     &date,
		Host:          parse.Hosts(page[fetch.FieldHosts]),
		Attire:        parse.Attire(page[fetch.FieldAttire]),
		Sitename:      strings.TrimSpace(page[fetch.FieldSitename]),
		URL:           link,
	}
	if attending {
		rec.Attending = Ptr(Marker)
	}
	if sbOK {
		rec.SignupBefore = &signupBefore
	}
	if cbOK {
		rec.CancelBefore = &cancelBefore
	}

	if d, ok := parse.Duration(page[fetch.FieldDuration]); ok {
		rec.DurationHours = &d
	}
	if c, ok := parse.Money(page[fetch.FieldVenueCost]); ok {
		rec.VenueCost = &c
	}
	if c, ok := parse.Money(page[fetch.FieldEventCost]); ok {
		rec.EventCost = &c
	}
	if c, ok := parse.Money(page[fetch.FieldEventTax]); ok {
		rec.EventTax = &c
	}
	rec.EventCost = ReconcileCost(name, page[fetch.FieldDescription], rec.EventCost)

	rec.Attendees, rec.Limit, rec.SpotsLeft, _ = parse.Capacity(signup[fetch.FieldCapacity])

	a.resolveLocation(ctx, rec, page[fetch.FieldAddress])

	a.log.WithFields(logrus.Fields{
		"event":  name,
		"status": status,
		"member": member,
	}).Info("normalized event")
	return rec
}

// resolveLocation fills the travel, phone and address fields from the raw
// venue address. A record with no structured address keeps the raw address
// (commas stripped); a resolved one clears it.
func (a *Assembler) resolveLocation(ctx context.Context, rec *Record, rawAddr string) {
	rawAddr = strings.TrimSpace(strings.ReplaceAll(rawAddr, "\n", " "))
	if rawAddr == "" {
		return
	}

	if p, ok := parse.Phone(rawAddr); ok {
		rec.Phone = &p
	}

	rec.DistFromHome, rec.TimeFromHome = a.travel(ctx, a.home, rawAddr)
	rec.DistFromWork, rec.TimeFromWork = a.travel(ctx, a.work, rawAddr)

	rec.Street, rec.City, rec.State, rec.Zip = a.resolveAddress(ctx, rawAddr)
	if rec.Street != nil || rec.City != nil || rec.State != nil {
		return
	}
	rec.RawAddress = Ptr(strings.ReplaceAll(rawAddr, ",", ""))
}

func (a *Assembler) travel(ctx context.Context, origin, destination string) (miles, minutes *decimal.Decimal) {
	if origin == "" {
		return nil, nil
	}
	travel, ok, err := a.geocoder.TravelData(ctx, origin, destination)
	if err != nil {
		a.log.WithError(err).WithField("destination", destination).Warn("travel lookup failed")
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return &travel.Miles, &travel.Minutes
}

// resolveAddress geocodes the raw address and splits the formatted result
// into street, city, state and zip. The street segment sometimes arrives with
// the lowercased city name glued onto its end ("123 Main Stseattle"); that
// suffix is stripped.
func (a *Assembler) resolveAddress(ctx context.Context, rawAddr string) (street, city, state, zip *string) {
	addr := strings.ReplaceAll(rawAddr, privacyNotice, "")

	formatted, ok, err := a.geocoder.Resolve(ctx, addr)
	if err != nil {
		a.log.WithError(err).WithField("address", addr).Warn("geocode failed")
		return nil, nil, nil, nil
	}
	if !ok {
		return nil, nil, nil, nil
	}

	parts := strings.Split(formatted, ",")
	if len(parts) < 3 {
		return nil, nil, nil, nil
	}

	st := strings.TrimSpace(parts[0])
	ct := strings.TrimSpace(parts[1])
	stateZip := strings.TrimSpace(parts[2])

	var stt, zp string
	if fields := strings.Fields(stateZip); len(fields) > 1 {
		stt, zp = fields[0], fields[1]
	} else {
		stt = stateZip
	}

	lowerCity := strings.ToLower(ct)
	if strings.HasSuffix(st, lowerCity) {
		st = strings.TrimSuffix(st, lowerCity)
	}

	street, city, state = &st, &ct, &stt
	if zp != "" {
		zip = &zp
	}
	return street, city, state, zip
}

// splitNameLocation splits the combined name/location field on its first
// line break.
func splitNameLocation(s string) (name, location string) {
	parts := strings.SplitN(s, "\n", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		location = strings.TrimSpace(parts[1])
	}
	return name, location
}

// normalizeStatus maps raw status text onto the status enum.
func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "event has passed":
		return StatusPassed
	case strings.Contains(s, "full"):
		return StatusFull
	case strings.Contains(s, "available"):
		return StatusAvailable
	default:
		return StatusUnknown
	}
}

// normalizeMemberStatus maps raw member status text onto the member enum and
// reports whether the member is already signed up.
func normalizeMemberStatus(s string) (status string, attending bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "cancel"):
		return MemberCanceled, false
	case strings.Contains(s, "not signed"):
		return MemberNotSigned, false
	case strings.Contains(s, "signed up"):
		return MemberSignedUp, true
	case strings.Contains(s, "wait"):
		return MemberWaitlisted, false
	default:
		return MemberUnknown, false
	}
}

func (a *Assembler) exclude(name, reason string) {
	a.log.WithFields(logrus.Fields{"event": name, "reason": reason}).Debug("excluded event")
}
