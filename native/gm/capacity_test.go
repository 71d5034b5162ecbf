package gm

import (
	"errors"
	"testing"
)

func TestCalculateCapacityUsed(t *testing.T) {
	cases := []struct {
		name         string
		elapsed      int64
		window       uint64
		capacityUsed uint64
		rateLimit    uint64
		want         uint64
		wantErr      error
	}{
		{name: "partial decay", elapsed: 10, window: 60, capacityUsed: 100, rateLimit: 100, want: 84},
		{name: "half window", elapsed: 30, window: 60, capacityUsed: 100, rateLimit: 100, want: 50},
		{name: "no time elapsed", elapsed: 0, window: 60, capacityUsed: 100, rateLimit: 100, want: 100},
		{name: "window elapsed", elapsed: 60, window: 60, capacityUsed: 100, rateLimit: 100, want: 0},
		{name: "beyond window", elapsed: 120, window: 60, capacityUsed: 100, rateLimit: 100, want: 0},
		{name: "zero window", elapsed: 0, window: 0, capacityUsed: 100, rateLimit: 100, want: 0},
		{name: "decay exceeds used", elapsed: 30, window: 60, capacityUsed: 10, rateLimit: 100, want: 0},
		{name: "negative elapsed", elapsed: -1, window: 60, capacityUsed: 100, rateLimit: 100, wantErr: ErrNegativeElapsed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateCapacityUsed(tc.elapsed, tc.window, tc.capacityUsed, tc.rateLimit)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
