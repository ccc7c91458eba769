package parse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantWeekday string
		wantHour    int
		wantMinute  int
		wantDay     int
		wantMonth   time.Month
		wantYear    int
		wantOK      bool
	}{
		{
			name:        "PM hour below 12 converts to 24-hour",
			input:       "Saturday March 14, 2026 7:30 PM",
			wantWeekday: "Saturday",
			wantHour:    19,
			wantMinute:  30,
			wantDay:     14,
			wantMonth:   time.March,
			wantYear:    2026,
			wantOK:      true,
		},
		{
			name:        "noon stays 12",
			input:       "Sunday June 7, 2026 12:00 PM",
			wantWeekday: "Sunday",
			wantHour:    12,
			wantDay:     7,
			wantMonth:   time.June,
			wantYear:    2026,
			wantOK:      true,
		},
		{
			name:        "inherited 12 AM rule keeps hour 12",
			input:       "Saturday January 10, 2026 12:30 AM",
			wantWeekday: "Saturday",
			wantHour:    12,
			wantMinute:  30,
			wantDay:     10,
			wantMonth:   time.January,
			wantYear:    2026,
			wantOK:      true,
		},
		{
			name:        "AM morning hour unchanged",
			input:       "Friday December 4, 2026 9:15 AM",
			wantWeekday: "Friday",
			wantHour:    9,
			wantMinute:  15,
			wantDay:     4,
			wantMonth:   time.December,
			wantYear:    2026,
			wantOK:      true,
		},
		{
			name:   "unknown month word",
			input:  "Friday Smarch 4, 2026 9:15 AM",
			wantOK: false,
		},
		{
			name:   "empty string",
			input:  "",
			wantOK: false,
		},
		{
			name:   "no time component",
			input:  "Saturday March 14, 2026",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weekday, got, ok := DateTime(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("DateTime(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !tt.wantOK {
				if !got.IsZero() {
					t.Errorf("DateTime(%q) = %v, want zero time", tt.input, got)
				}
				return
			}
			if weekday != tt.wantWeekday {
				t.Errorf("weekday = %q, want %q", weekday, tt.wantWeekday)
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("date = %v, want %d %v %d", got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
				t.Errorf("time = %02d:%02d, want %02d:%02d", got.Hour(), got.Minute(), tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "dollar sign with grouping", input: "$1,234.50", want: "1234.50", wantOK: true},
		{name: "plain amount", input: "12.00", want: "12.00", wantOK: true},
		{name: "free-text cost", input: "Free", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
		{name: "no decimal point", input: "$12", wantOK: false},
		{name: "zero amount parses as zero", input: "$0.00", want: "0.00", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Money(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Money(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(want) {
				t.Errorf("Money(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "nights multiply to hours", input: "2 nights", want: "48", wantOK: true},
		{name: "days multiply to hours", input: "1 day", want: "24", wantOK: true},
		{name: "hours pass through", input: "3 hours", want: "3", wantOK: true},
		{name: "fractional hours", input: "1.5 hours", want: "1.5", wantOK: true},
		{name: "open-ended duration", input: "4+ hours", want: "4", wantOK: true},
		{name: "no number", input: "all evening", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Duration(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Duration(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("Duration(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "parenthesized area code",
			input:  "500 Pine St, Seattle, WA 98101 (206) 555-1234",
			want:   "206-555-1234",
			wantOK: true,
		},
		{
			name:   "dashed number",
			input:  "Call 425-555-0199 for details",
			want:   "425-555-0199",
			wantOK: true,
		},
		{
			name:   "dotted number",
			input:  "206.555.4321",
			want:   "206-555-4321",
			wantOK: true,
		},
		{name: "no phone number", input: "500 Pine St, Seattle, WA", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Phone(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name          string
		input         string
		wantAttendees *int
		wantLimit     *int
		wantSpots     *int
		wantOK        bool
	}{
		{
			name:          "no limit means unlimited",
			input:         "5 attending/no limit",
			wantAttendees: intPtr(5),
			wantOK:        true,
		},
		{
			name:          "limited event",
			input:         "5 attending/10 limit",
			wantAttendees: intPtr(5),
			wantLimit:     intPtr(10),
			wantSpots:     intPtr(5),
			wantOK:        true,
		},
		{
			name:          "overbooked spots stay negative",
			input:         "12 attending/10 limit",
			wantAttendees: intPtr(12),
			wantLimit:     intPtr(10),
			wantSpots:     intPtr(-2),
			wantOK:        true,
		},
		{
			name:          "spacing and case variations",
			input:         "8 Attending / 8 Limit",
			wantAttendees: intPtr(8),
			wantLimit:     intPtr(8),
			wantSpots:     intPtr(0),
			wantOK:        true,
		},
		{name: "garbage", input: "sold out", wantOK: false},
		{name: "empty string", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attendees, limit, spots, ok := Capacity(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Capacity(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			checkIntPtr(t, "attendees", attendees, tt.wantAttendees)
			checkIntPtr(t, "limit", limit, tt.wantLimit)
			checkIntPtr(t, "spotsLeft", spots, tt.wantSpots)
		})
	}
}

func checkIntPtr(t *testing.T, label string, got, want *int) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %d, want nil", label, *got)
	case want != nil && got == nil:
		t.Errorf("%s = nil, want %d", label, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s = %d, want %d", label, *got, *want)
	}
}

func TestHosts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "sorted and joined",
			input: "Pat Morgan [Photo]\nAlex Chen [Photo]",
			want:  "Alex Chen - Pat Morgan",
		},
		{name: "single host", input: "Sam Lee", want: "Sam Lee"},
		{name: "empty", input: "", want: ""},
		{name: "blank lines dropped", input: "\nSam Lee\n\n", want: "Sam Lee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hosts(tt.input); got != tt.want {
				t.Errorf("Hosts(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAttire(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"casual", "Casual"},
		{"DRESSY CASUAL", "Dressy Casual"},
		{"  business  casual  ", "Business Casual"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Attire(tt.input); got != tt.want {
			t.Errorf("Attire(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
