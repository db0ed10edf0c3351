package pricing

import "testing"

func TestForStayTwoNights(t *testing.T) {
	t.Parallel()

	quote := ForStay("2024-01-01", "2024-01-03")
	if quote.Nights != 2 {
		t.Fatalf("expected 2 nights, got %d", quote.Nights)
	}
	if quote.Total != 10000 {
		t.Fatalf("expected total 10000, got %d", quote.Total)
	}
}

func TestForStaySingleNight(t *testing.T) {
	t.Parallel()

	quote := ForStay("2024-06-10", "2024-06-11")
	if quote.Nights != 1 {
		t.Fatalf("expected 1 night, got %d", quote.Nights)
	}
	if quote.Total != NightlyRate {
		t.Fatalf("expected total %d, got %d", NightlyRate, quote.Total)
	}
}

func TestForStayEqualDatesFloorsToOneNight(t *testing.T) {
	t.Parallel()

	quote := ForStay("2024-01-05", "2024-01-05")
	if quote.Nights != 1 {
		t.Fatalf("expected floor of 1 night, got %d", quote.Nights)
	}
}

func TestForStayInvertedDatesFloorsToOneNight(t *testing.T) {
	t.Parallel()

	quote := ForStay("2024-01-10", "2024-01-05")
	if quote.Nights != 1 {
		t.Fatalf("expected floor of 1 night, got %d", quote.Nights)
	}
	if quote.Total != NightlyRate {
		t.Fatalf("expected single-night total, got %d", quote.Total)
	}
}

func TestForStayUnparsableDatesFallBack(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"garbage check-in", "next tuesday", "2024-01-03"},
		{"garbage check-out", "2024-01-01", "soonish"},
		{"both empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			quote := ForStay(tc.checkIn, tc.checkOut)
			if quote.Nights != 1 {
				t.Fatalf("expected fallback of 1 night, got %d", quote.Nights)
			}
			if quote.Total != NightlyRate {
				t.Fatalf("expected fallback total %d, got %d", NightlyRate, quote.Total)
			}
		})
	}
}

func TestNightsBetween(t *testing.T) {
	t.Parallel()

	nights, ok := nightsBetween("2024-03-01", "2024-03-08")
	if !ok {
		t.Fatal("expected parseable dates")
	}
	if nights != 7 {
		t.Fatalf("expected 7 nights, got %d", nights)
	}

	if _, ok := nightsBetween("01/03/2024", "2024-03-08"); ok {
		t.Fatal("expected parse failure for non-ISO date")
	}
}
