package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pfrederiksen/ea-events/internal/record"
)

// primaryFileName is the top-level CSV holding every record.
const primaryFileName = "events.csv"

// Columns is the fixed output column order.
var Columns = []string{
	"attending", "sign_up", "wait_list", "cancel",
	"event_status", "member_status", "event_name", "event_location",
	"event_day", "event_date", "signup_before", "cancel_before",
	"event_cost", "event_tax", "venue_cost",
	"spots_left", "attendees", "limit", "duration_hours",
	"dist_from_home", "time_from_home", "dist_from_work", "time_from_work",
	"street", "city", "state", "zip", "phone", "raw_address",
	"host", "attire", "sitename", "url",
}

// categoricalColumns get one subdirectory each with a file per distinct
// non-empty value.
var categoricalColumns = []string{
	"event_status", "member_status", "sitename", "city", "state", "event_day",
}

// rangeColumns get one subdirectory each with a file per numeric bucket.
var rangeColumns = []string{
	"dist_from_home", "dist_from_work", "time_from_work", "time_from_home",
}

// bucketEdges are the range boundaries. Comparisons are strict on both
// sides, so a value landing exactly on an edge falls in no bucket.
var bucketEdges = []int{10, 15, 20, 25, 30, 40, 50, 60, 100}

const dateLayout = "2006-01-02 15:04:05"

// Writer renders a record collection under a single output directory.
type Writer struct {
	dir string
	log *logrus.Logger
}

func NewWriter(dir string, log *logrus.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

// WriteAll writes the primary CSV plus every categorical and range bucket
// directory. Each bucket directory is removed and recreated; empty buckets
// produce no file.
func (w *Writer) WriteAll(records []*record.Record) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sortRecords(records)

	if err := w.writeCSV(filepath.Join(w.dir, primaryFileName), records); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"file": primaryFileName, "records": len(records)}).Info("Wrote primary CSV")

	for _, col := range categoricalColumns {
		if err := w.writeCategorical(col, records); err != nil {
			return err
		}
	}
	for _, col := range rangeColumns {
		if err := w.writeRanges(col, records); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) resetDir(col string) (string, error) {
	dir := filepath.Join(w.dir, col)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("removing stale %s directory: %w", col, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s directory: %w", col, err)
	}
	return dir, nil
}

func (w *Writer) writeCategorical(col string, records []*record.Record) error {
	dir, err := w.resetDir(col)
	if err != nil {
		return err
	}

	groups := make(map[string][]*record.Record)
	for _, r := range records {
		v := categoricalValue(r, col)
		if v == "" {
			continue
		}
		groups[v] = append(groups[v], r)
	}
	for value, group := range groups {
		path := filepath.Join(dir, value+".csv")
		if err := w.writeCSV(path, group); err != nil {
			return err
		}
	}
	w.log.WithFields(logrus.Fields{"column": col, "groups": len(groups)}).Debug("Wrote categorical buckets")
	return nil
}

func (w *Writer) writeRanges(col string, records []*record.Record) error {
	dir, err := w.resetDir(col)
	if err != nil {
		return err
	}

	fileCol := strings.ReplaceAll(col, "_", " ")
	written := 0
	for _, b := range buckets() {
		var group []*record.Record
		for _, r := range records {
			v := rangeValue(r, col)
			if v != nil && b.contains(*v) {
				group = append(group, r)
			}
		}
		if len(group) == 0 {
			continue
		}
		path := filepath.Join(dir, fileCol+" "+b.label()+".csv")
		if err := w.writeCSV(path, group); err != nil {
			return err
		}
		written++
	}
	w.log.WithFields(logrus.Fields{"column": col, "buckets": written}).Debug("Wrote range buckets")
	return nil
}

func (w *Writer) writeCSV(path string, records []*record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// Row renders one record in the Columns order.
func Row(r *record.Record) []string {
	return []string{
		strOrEmpty(r.Attending), strOrEmpty(r.SignUp), strOrEmpty(r.WaitList), strOrEmpty(r.Cancel),
		r.EventStatus, r.MemberStatus, r.EventName, r.EventLocation,
		strOrEmpty(r.EventDay), timeOrEmpty(r.EventDate), timeOrEmpty(r.SignupBefore), timeOrEmpty(r.CancelBefore),
		moneyOrEmpty(r.EventCost), moneyOrEmpty(r.EventTax), moneyOrEmpty(r.VenueCost),
		intOrEmpty(r.SpotsLeft), intOrEmpty(r.Attendees), intOrEmpty(r.Limit),
		decOrEmpty(r.DurationHours),
		decOrEmpty(r.DistFromHome), decOrEmpty(r.TimeFromHome), decOrEmpty(r.DistFromWork), decOrEmpty(r.TimeFromWork),
		strOrEmpty(r.Street), strOrEmpty(r.City), strOrEmpty(r.State), strOrEmpty(r.Zip),
		strOrEmpty(r.Phone), strOrEmpty(r.RawAddress),
		r.Host, r.Attire, r.Sitename, r.URL,
	}
}

// sortRecords orders the collection for the primary CSV. Nil values sort
// after present ones in every keyed column.
func sortRecords(records []*record.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Sitename != b.Sitename {
			return a.Sitename < b.Sitename
		}
		if a.EventStatus != b.EventStatus {
			return a.EventStatus < b.EventStatus
		}
		if a.MemberStatus != b.MemberStatus {
			return a.MemberStatus < b.MemberStatus
		}
		if c, done := compareIntPtr(a.SpotsLeft, b.SpotsLeft, true); done {
			return c
		}
		if c, done := compareIntPtr(a.Attendees, b.Attendees, false); done {
			return c
		}
		if c, done := compareTimePtr(a.EventDate, b.EventDate); done {
			return c
		}
		if c, done := compareDecPtr(a.EventCost, b.EventCost); done {
			return c
		}
		return false
	})
}

func compareIntPtr(a, b *int, ascending bool) (less, done bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case *a == *b:
		return false, false
	case ascending:
		return *a < *b, true
	default:
		return *a > *b, true
	}
}

func compareTimePtr(a, b *time.Time) (less, done bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case a.Equal(*b):
		return false, false
	default:
		return a.Before(*b), true
	}
}

func compareDecPtr(a, b *decimal.Decimal) (less, done bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case a.Equal(*b):
		return false, false
	default:
		return a.LessThan(*b), true
	}
}

type bucket struct {
	low, high int // -1 means unbounded
}

func buckets() []bucket {
	edges := bucketEdges
	bs := []bucket{{low: -1, high: edges[0]}}
	for i := 1; i < len(edges); i++ {
		bs = append(bs, bucket{low: edges[i-1], high: edges[i]})
	}
	bs = append(bs, bucket{low: edges[len(edges)-1], high: -1})
	return bs
}

func (b bucket) contains(v decimal.Decimal) bool {
	if b.low >= 0 && !v.GreaterThan(decimal.NewFromInt(int64(b.low))) {
		return false
	}
	if b.high >= 0 && !v.LessThan(decimal.NewFromInt(int64(b.high))) {
		return false
	}
	return true
}

func (b bucket) label() string {
	switch {
	case b.low < 0:
		return fmt.Sprintf("less than %d", b.high)
	case b.high < 0:
		return fmt.Sprintf("greater than %d", b.low)
	default:
		return fmt.Sprintf("between %d and %d", b.low, b.high)
	}
}

func categoricalValue(r *record.Record, col string) string {
	switch col {
	case "event_status":
		return r.EventStatus
	case "member_status":
		return r.MemberStatus
	case "sitename":
		return r.Sitename
	case "city":
		return strOrEmpty(r.City)
	case "state":
		return strOrEmpty(r.State)
	case "event_day":
		return strOrEmpty(r.EventDay)
	}
	return ""
}

func rangeValue(r *record.Record, col string) *decimal.Decimal {
	switch col {
	case "dist_from_home":
		return r.DistFromHome
	case "time_from_home":
		return r.TimeFromHome
	case "dist_from_work":
		return r.DistFromWork
	case "time_from_work":
		return r.TimeFromWork
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func decOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func moneyOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
