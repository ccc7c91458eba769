package record

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return &d
}

func TestReconcileCost(t *testing.T) {
	tests := []struct {
		name        string
		eventName   string
		description string
		advertised  *decimal.Decimal
		want        *decimal.Decimal
	}{
		{
			name:        "no mentions keeps advertised",
			eventName:   "Trivia Night",
			description: "Join us for a fun evening of trivia.",
			advertised:  dec(t, "12.00"),
			want:        dec(t, "12.00"),
		},
		{
			name:        "single mention equal to advertised",
			eventName:   "Trivia Night",
			description: "Entry is $12.00 at the door.",
			advertised:  dec(t, "12.00"),
			want:        dec(t, "12.00"),
		},
		{
			name:        "single larger mention wins",
			eventName:   "Wine Tasting",
			description: "Tasting fee of $25 collected at the venue.",
			advertised:  dec(t, "10.00"),
			want:        dec(t, "25"),
		},
		{
			name:        "single smaller mention loses",
			eventName:   "Wine Tasting",
			description: "Bring $5 for parking.",
			advertised:  dec(t, "10.00"),
			want:        dec(t, "10.00"),
		},
		{
			name:        "multiple mentions keep advertised for normal events",
			eventName:   "Game Night",
			description: "Drinks around $10 and snacks around $15 at the bar.",
			advertised:  dec(t, "8.00"),
			want:        dec(t, "8.00"),
		},
		{
			name:        "override activity takes minimum mention",
			eventName:   "Beach Volleyball League",
			description: "Drop-in $10 per night or $45 for the season.",
			advertised:  dec(t, "45.00"),
			want:        dec(t, "10"),
		},
		{
			name:        "nil advertised with one mention adopts the mention",
			eventName:   "Happy Hour",
			description: "Cover is $5 after 8pm.",
			advertised:  nil,
			want:        dec(t, "5"),
		},
		{
			name:        "nil advertised with no mentions stays nil",
			eventName:   "Happy Hour",
			description: "No cover charge.",
			advertised:  nil,
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileCost(tt.eventName, tt.description, tt.advertised)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %s, want nil", got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %s", tt.want)
			case tt.want != nil && got != nil && !got.Equal(*tt.want):
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
