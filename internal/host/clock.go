package host

// Clock numbers the addEvent calls of one run. Rerun resets it, so replaying
// the same log reproduces the same sequence numbers. Like Host, it is not
// safe for concurrent use.
type Clock struct {
	seq int64
}

// Next returns the sequence number of the next call, starting at 1.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last number handed out, 0 at the start of a run.
func (c *Clock) Current() int64 {
	return c.seq
}

// Reset rewinds to the start of a run.
func (c *Clock) Reset() {
	c.seq = 0
}
