package gm

import (
	"errors"
	"testing"
)

func TestCheckTradingHours(t *testing.T) {
	// The epoch was a Thursday; day 2 of the epoch week (2*86400) is Saturday.
	saturday := 2 * SecondsPerDay
	cases := []struct {
		name      string
		timestamp int64
		offset    int64
		wantErr   error
	}{
		{name: "thursday epoch", timestamp: 0},
		{name: "friday", timestamp: SecondsPerDay},
		{name: "friday last second", timestamp: saturday - 1},
		{name: "saturday midnight", timestamp: saturday, wantErr: ErrOutsideTradingHours},
		{name: "sunday", timestamp: 3 * SecondsPerDay, wantErr: ErrOutsideTradingHours},
		{name: "monday", timestamp: 4 * SecondsPerDay},
		{name: "pre-epoch second truncates to epoch day", timestamp: -1},
		{name: "offset pushes into saturday", timestamp: saturday - 1, offset: 1, wantErr: ErrOutsideTradingHours},
		{name: "negative offset pulls back to friday", timestamp: saturday, offset: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTradingHours(tc.timestamp, tc.offset)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTradingHoursOffset(t *testing.T) {
	if err := ValidateTradingHoursOffset(MinTradingHoursOffset); err != nil {
		t.Fatalf("westernmost offset rejected: %v", err)
	}
	if err := ValidateTradingHoursOffset(MaxTradingHoursOffset); err != nil {
		t.Fatalf("easternmost offset rejected: %v", err)
	}
	if err := ValidateTradingHoursOffset(MinTradingHoursOffset - 1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if err := ValidateTradingHoursOffset(MaxTradingHoursOffset + 1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("expected ErrOffsetOutOfRange, got %v", err)
	}
}
