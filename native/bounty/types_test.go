package bounty

import "testing"

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range []Category{CategoryMath, CategoryProgramming, CategoryWriting, CategoryScience, CategoryLanguage} {
		if !c.Valid() {
			t.Fatalf("category %d should be valid", c)
		}
		parsed, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("parse %q: %v", c.String(), err)
		}
		if parsed != c {
			t.Fatalf("round trip mismatch: %d != %d", parsed, c)
		}
	}
	if Category(5).Valid() {
		t.Fatal("category 5 should be invalid")
	}
	if _, err := ParseCategory("Alchemy"); err == nil {
		t.Fatal("unknown category should not parse")
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusOpen:      false,
		StatusClaimed:   false,
		StatusSubmitted: false,
		StatusCompleted: true,
		StatusCancelled: true,
	}
	for status, terminal := range cases {
		if !status.Valid() {
			t.Fatalf("status %d should be valid", status)
		}
		if status.Terminal() != terminal {
			t.Fatalf("status %s: terminal=%v, want %v", status, status.Terminal(), terminal)
		}
	}
	if Status(5).Valid() {
		t.Fatal("status 5 should be invalid")
	}
}
