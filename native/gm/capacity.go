package gm

// CalculateCapacityUsed applies linear decay to a rate limiter's consumed
// capacity. Once the full window has elapsed the capacity is fully restored
// (returns 0). Inside the window the decay is rateLimit * elapsed / window,
// floored so that less capacity is restored and limiting stays strict.
func CalculateCapacityUsed(elapsed int64, window, capacityUsed, rateLimit uint64) (uint64, error) {
	if elapsed < 0 {
		return 0, ErrNegativeElapsed
	}
	if uint64(elapsed) >= window {
		return 0, nil
	}
	decay, err := MulDiv(rateLimit, uint64(elapsed), window, false)
	if err != nil {
		return 0, err
	}
	if capacityUsed > decay {
		return capacityUsed - decay, nil
	}
	return 0, nil
}
