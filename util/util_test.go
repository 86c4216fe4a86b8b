package util

import "testing"

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Bitcoin is money. It is old. It is digital.", 2, "Bitcoin is money. It is old."},
		{"One sentence only", 2, "One sentence only."},
		{"Ends with period.", 2, "Ends with period."},
		{"", 2, ""},
	}
	for _, tt := range tests {
		if got := FirstSentences(tt.in, tt.n); got != tt.want {
			t.Errorf("FirstSentences(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<a href="x">Bitcoin</a> &amp; friends `)
	if got != "Bitcoin & friends" {
		t.Errorf("StripTags = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Ethereum", 5); got != "Ethe…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("BTC", 5); got != "BTC" {
		t.Errorf("Truncate = %q", got)
	}
}
