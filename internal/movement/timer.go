package movement

// TimeTracker counts down milliseconds fed by Update.
type TimeTracker struct {
	expiry int64
}

func (t *TimeTracker) Update(diff uint32) {
	t.expiry -= int64(diff)
}

func (t *TimeTracker) Passed() bool {
	return t.expiry <= 0
}

func (t *TimeTracker) Reset(ms uint32) {
	t.expiry = int64(ms)
}

// Remaining returns milliseconds left, zero if passed.
func (t *TimeTracker) Remaining() uint32 {
	if t.expiry <= 0 {
		return 0
	}
	return uint32(t.expiry)
}
