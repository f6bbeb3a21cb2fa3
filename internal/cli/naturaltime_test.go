package cli

import "testing"

func TestParseOlderThanAcceptsGoDuration(t *testing.T) {
	d, err := ParseOlderThan("720h")
	if err != nil {
		t.Fatalf("ParseOlderThan: %v", err)
	}
	if d.Hours() != 720 {
		t.Errorf("duration = %v, want 720h", d)
	}
}

func TestParseOlderThanAcceptsNaturalLanguage(t *testing.T) {
	d, err := ParseOlderThan("2 weeks ago")
	if err != nil {
		t.Fatalf("ParseOlderThan: %v", err)
	}
	if d <= 0 {
		t.Errorf("duration = %v, want positive", d)
	}
}

func TestParseOlderThanRejectsNonsense(t *testing.T) {
	if _, err := ParseOlderThan("not a time at all xyz123"); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}
