// Package store persists normalized event records and an append-only action
// log in a local sqlite database.
//
// The store replaces any re-reading of previously exported CSV files: request
// markers (sign_up, wait_list, cancel) live on the stored rows, survive
// rescrapes, and are read once per actions run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/ea-events/internal/record"
)

const dbFileName = "ea-events.sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS events (
  url             TEXT PRIMARY KEY,
  run_id          TEXT NOT NULL,
  attending       TEXT,
  sign_up         TEXT,
  wait_list       TEXT,
  cancel          TEXT,
  event_status    TEXT NOT NULL,
  member_status   TEXT NOT NULL,
  event_name      TEXT NOT NULL,
  event_location  TEXT,
  event_day       TEXT,
  event_date      DATETIME,
  signup_before   DATETIME,
  cancel_before   DATETIME,
  event_cost      TEXT,
  event_tax       TEXT,
  venue_cost      TEXT,
  spots_left      INTEGER,
  attendees       INTEGER,
  event_limit     INTEGER,
  duration_hours  TEXT,
  dist_from_home  TEXT,
  time_from_home  TEXT,
  dist_from_work  TEXT,
  time_from_work  TEXT,
  street          TEXT,
  city            TEXT,
  state           TEXT,
  zip             TEXT,
  phone           TEXT,
  raw_address     TEXT,
  host            TEXT,
  attire          TEXT,
  sitename        TEXT,
  updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_status ON events(event_status, member_status);
CREATE TABLE IF NOT EXISTS actions (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  run_id      TEXT NOT NULL,
  url         TEXT NOT NULL,
  action      TEXT NOT NULL CHECK (action IN ('signup','waitlist','cancel')),
  amount      TEXT NOT NULL,
  accepted    INTEGER NOT NULL CHECK (accepted IN (0,1))
);
CREATE INDEX IF NOT EXISTS idx_actions_url ON actions(url, occurred_at);
`

// timeLayout is the format dates are stored as.
const timeLayout = time.RFC3339

// DB wraps the sqlite handle. One DB carries one run identifier, stamped on
// every row it writes.
type DB struct {
	sql   *sql.DB
	runID string
}

// LoggedAction is one row of the append-only action log.
type LoggedAction struct {
	OccurredAt string
	RunID      string
	URL        string
	Action     string
	Amount     decimal.Decimal
	Accepted   bool
}

// Open opens (creating if needed) the database under dataDir.
func Open(dataDir string) (*DB, error) {
	dir, err := homedir.Expand(dataDir)
	if err != nil {
		return nil, fmt.Errorf("expanding data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, dbFileName)
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{sql: db, runID: uuid.NewString()}, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ReplaceEvents upserts the run's records keyed by url. Scraped columns
// always take the new value; the request markers (sign_up, wait_list,
// cancel) are preserved from the existing row when the incoming record does
// not set them, so user-flagged actions survive rescrapes. Rows for events
// no longer on the calendar are kept, never deleted.
func (d *DB) ReplaceEvents(ctx context.Context, records []*record.Record) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO events (
  url, run_id, attending, sign_up, wait_list, cancel,
  event_status, member_status, event_name, event_location,
  event_day, event_date, signup_before, cancel_before,
  event_cost, event_tax, venue_cost,
  spots_left, attendees, event_limit, duration_hours,
  dist_from_home, time_from_home, dist_from_work, time_from_work,
  street, city, state, zip, phone, raw_address,
  host, attire, sitename, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(url) DO UPDATE SET
  run_id = excluded.run_id,
  attending = excluded.attending,
  sign_up = COALESCE(excluded.sign_up, events.sign_up),
  wait_list = COALESCE(excluded.wait_list, events.wait_list),
  cancel = COALESCE(excluded.cancel, events.cancel),
  event_status = excluded.event_status,
  member_status = excluded.member_status,
  event_name = excluded.event_name,
  event_location = excluded.event_location,
  event_day = excluded.event_day,
  event_date = excluded.event_date,
  signup_before = excluded.signup_before,
  cancel_before = excluded.cancel_before,
  event_cost = excluded.event_cost,
  event_tax = excluded.event_tax,
  venue_cost = excluded.venue_cost,
  spots_left = excluded.spots_left,
  attendees = excluded.attendees,
  event_limit = excluded.event_limit,
  duration_hours = excluded.duration_hours,
  dist_from_home = excluded.dist_from_home,
  time_from_home = excluded.time_from_home,
  dist_from_work = excluded.dist_from_work,
  time_from_work = excluded.time_from_work,
  street = excluded.street,
  city = excluded.city,
  state = excluded.state,
  zip = excluded.zip,
  phone = excluded.phone,
  raw_address = excluded.raw_address,
  host = excluded.host,
  attire = excluded.attire,
  sitename = excluded.sitename,
  updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.URL, d.runID,
			nullStr(r.Attending), nullStr(r.SignUp), nullStr(r.WaitList), nullStr(r.Cancel),
			r.EventStatus, r.MemberStatus, r.EventName, r.EventLocation,
			nullStr(r.EventDay), nullTime(r.EventDate), nullTime(r.SignupBefore), nullTime(r.CancelBefore),
			nullDec(r.EventCost), nullDec(r.EventTax), nullDec(r.VenueCost),
			nullInt(r.SpotsLeft), nullInt(r.Attendees), nullInt(r.Limit), nullDec(r.DurationHours),
			nullDec(r.DistFromHome), nullDec(r.TimeFromHome), nullDec(r.DistFromWork), nullDec(r.TimeFromWork),
			nullStr(r.Street), nullStr(r.City), nullStr(r.State), nullStr(r.Zip),
			nullStr(r.Phone), nullStr(r.RawAddress),
			r.Host, r.Attire, r.Sitename,
		)
		if err != nil {
			return fmt.Errorf("upserting %s: %w", r.URL, err)
		}
	}
	return tx.Commit()
}

// LoadEvents returns the full historical record collection.
func (d *DB) LoadEvents(ctx context.Context) ([]*record.Record, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT url, attending, sign_up, wait_list, cancel,
  event_status, member_status, event_name, event_location,
  event_day, event_date, signup_before, cancel_before,
  event_cost, event_tax, venue_cost,
  spots_left, attendees, event_limit, duration_hours,
  dist_from_home, time_from_home, dist_from_work, time_from_work,
  street, city, state, zip, phone, raw_address,
  host, attire, sitename
FROM events ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		var (
			r                                          record.Record
			attending, signUp, waitList, cancel        sql.NullString
			location                                   sql.NullString
			day, eventDate, signupBefore, cancelBefore sql.NullString
			cost, tax, venue, duration                 sql.NullString
			spots, attendees, limit                    sql.NullInt64
			distHome, timeHome, distWork, timeWork     sql.NullString
			street, city, state, zip, phone, rawAddr   sql.NullString
			host, attire, sitename                     sql.NullString
		)
		err := rows.Scan(&r.URL, &attending, &signUp, &waitList, &cancel,
			&r.EventStatus, &r.MemberStatus, &r.EventName, &location,
			&day, &eventDate, &signupBefore, &cancelBefore,
			&cost, &tax, &venue,
			&spots, &attendees, &limit, &duration,
			&distHome, &timeHome, &distWork, &timeWork,
			&street, &city, &state, &zip, &phone, &rawAddr,
			&host, &attire, &sitename)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}

		r.EventLocation = location.String
		r.Host = host.String
		r.Attire = attire.String
		r.Sitename = sitename.String

		r.Attending = strPtr(attending)
		r.SignUp = strPtr(signUp)
		r.WaitList = strPtr(waitList)
		r.Cancel = strPtr(cancel)
		r.EventDay = strPtr(day)
		r.Street = strPtr(street)
		r.City = strPtr(city)
		r.State = strPtr(state)
		r.Zip = strPtr(zip)
		r.Phone = strPtr(phone)
		r.RawAddress = strPtr(rawAddr)

		if r.EventDate, err = timePtr(eventDate); err != nil {
			return nil, err
		}
		if r.SignupBefore, err = timePtr(signupBefore); err != nil {
			return nil, err
		}
		if r.CancelBefore, err = timePtr(cancelBefore); err != nil {
			return nil, err
		}

		if r.EventCost, err = decPtr(cost); err != nil {
			return nil, err
		}
		if r.EventTax, err = decPtr(tax); err != nil {
			return nil, err
		}
		if r.VenueCost, err = decPtr(venue); err != nil {
			return nil, err
		}
		if r.DurationHours, err = decPtr(duration); err != nil {
			return nil, err
		}
		if r.DistFromHome, err = decPtr(distHome); err != nil {
			return nil, err
		}
		if r.TimeFromHome, err = decPtr(timeHome); err != nil {
			return nil, err
		}
		if r.DistFromWork, err = decPtr(distWork); err != nil {
			return nil, err
		}
		if r.TimeFromWork, err = decPtr(timeWork); err != nil {
			return nil, err
		}

		r.SpotsLeft = intPtr(spots)
		r.Attendees = intPtr(attendees)
		r.Limit = intPtr(limit)

		records = append(records, &r)
	}
	return records, rows.Err()
}

// CountEvents reports how many records the store holds.
func (d *DB) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// SetMarker flags a stored event for an action on the next actions run. The
// three request markers are mutually exclusive: setting one clears the other
// two.
func (d *DB) SetMarker(ctx context.Context, url, action string) error {
	var column string
	switch action {
	case "signup":
		column = "sign_up"
	case "waitlist":
		column = "wait_list"
	case "cancel":
		column = "cancel"
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	res, err := d.sql.ExecContext(ctx, fmt.Sprintf(`
UPDATE events SET sign_up = NULL, wait_list = NULL, cancel = NULL, %s = ? WHERE url = ?`, column),
		record.Marker, url)
	if err != nil {
		return fmt.Errorf("setting %s marker: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no stored event with url %s", url)
	}
	return nil
}

// MarkAttending commits a signup: the attending marker is set and the signup
// request cleared, keyed by url.
func (d *DB) MarkAttending(url string) error {
	_, err := d.sql.Exec(`UPDATE events SET attending = ?, sign_up = NULL WHERE url = ?`,
		record.Marker, url)
	if err != nil {
		return fmt.Errorf("marking attending: %w", err)
	}
	return nil
}

// LogAction appends one confirmation outcome to the action log.
func (d *DB) LogAction(url, action string, amount decimal.Decimal, accepted bool) error {
	_, err := d.sql.Exec(`
INSERT INTO actions (run_id, url, action, amount, accepted) VALUES (?,?,?,?,?)`,
		d.runID, url, action, amount.StringFixed(2), boolToInt(accepted))
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// ActionHistory returns the logged actions, oldest first.
func (d *DB) ActionHistory(ctx context.Context) ([]LoggedAction, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT occurred_at, run_id, url, action, amount, accepted FROM actions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var history []LoggedAction
	for rows.Next() {
		var (
			a        LoggedAction
			amount   string
			accepted int
		)
		if err := rows.Scan(&a.OccurredAt, &a.RunID, &a.URL, &a.Action, &amount, &accepted); err != nil {
			return nil, fmt.Errorf("scanning action row: %w", err)
		}
		if a.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing logged amount %q: %w", amount, err)
		}
		a.Accepted = accepted == 1
		history = append(history, a)
	}
	return history, rows.Err()
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullDec(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func decPtr(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing stored decimal %q: %w", s.String, err)
	}
	return &d, nil
}

func timePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing stored time %q: %w", s.String, err)
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
