package risk

// breachLatch is an edge trigger for one breach direction. It fires once on
// entry and stays armed until cleared.
type breachLatch struct {
	armed bool
}

// enter arms the latch and reports whether it was previously clear.
func (l *breachLatch) enter() bool {
	if l.armed {
		return false
	}
	l.armed = true
	return true
}

// clear disarms the latch and reports whether it was armed.
func (l *breachLatch) clear() bool {
	was := l.armed
	l.armed = false
	return was
}
