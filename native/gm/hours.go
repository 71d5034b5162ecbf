package gm

// ValidateTradingHoursOffset bounds the configured shift to real civil
// timezones, UTC-12:00 through UTC+14:00.
func ValidateTradingHoursOffset(offset int64) error {
	if offset < MinTradingHoursOffset || offset > MaxTradingHoursOffset {
		return ErrOffsetOutOfRange
	}
	return nil
}

// CheckTradingHours rejects trades whose shifted timestamp falls on a
// Saturday or Sunday. The epoch (1970-01-01) was a Thursday, so day index 3
// anchors the week; division truncates toward zero for pre-epoch inputs,
// matching the reference weekday arithmetic.
func CheckTradingHours(timestamp, offset int64) error {
	adjusted := timestamp + offset
	days := adjusted / SecondsPerDay
	day := ((days+3)%7 + 7) % 7
	if day >= 5 {
		return ErrOutsideTradingHours
	}
	return nil
}
