package picker

import "strconv"

// Outcome is the state a Session is in after a keystroke.
type Outcome int

const (
	// Pending means more input is needed.
	Pending Outcome = iota
	// Committed means an index was chosen.
	Committed
	// Cancelled means the user gave up, or entered an index that does not exist.
	Cancelled
)

// Control bytes understood by the session.
const (
	keyEscape    = 0x1b
	keyBackspace = 0x08
	keyDelete    = 0x7f
)

// Step describes what the caller should do after feeding one byte.
type Step struct {
	// Echo is the byte to display, or 0 when nothing should be echoed.
	Echo byte
	// Erase asks the caller to visually remove the last echoed byte.
	Erase bool
	// Outcome is Pending until the session reaches a final state.
	Outcome Outcome
	// Index is the committed 1-based item number.
	Index int
}

// Session resolves keystrokes into a 1-based item index. It holds no I/O and is
// driven one byte at a time by Picker.
//
// The digit buffer only ever holds a number in [1, count]: a digit that would leave
// it out of range is dropped. As soon as no further digit could keep the number in
// range, the session commits without waiting for Enter.
type Session struct {
	count int
	buf   []byte
	final Step
}

// NewSession returns a session selecting among count items.
func NewSession(count int) *Session {
	return &Session{count: count}
}

// Buffer returns the digits entered so far.
func (s *Session) Buffer() string {
	return string(s.buf)
}

// Done reports whether the session reached a final state.
func (s *Session) Done() bool {
	return s.final.Outcome != Pending
}

// Feed applies one keystroke. Once the session is done, Feed keeps returning the
// final step.
func (s *Session) Feed(b byte) Step {
	if s.Done() {
		return s.final
	}

	switch {
	case b == 'q' || b == 'Q' || b == keyEscape:
		return s.cancel()

	case b == '\r' || b == '\n':
		if len(s.buf) == 0 {
			return s.cancel()
		}
		n, err := strconv.Atoi(string(s.buf))
		if err != nil || !s.inRange(n) {
			return s.cancel()
		}
		return s.commit(n, 0)

	case b >= '0' && b <= '9':
		candidate := append(append([]byte(nil), s.buf...), b)
		n, err := strconv.Atoi(string(candidate))
		if err != nil || !s.inRange(n) {
			return Step{}
		}
		s.buf = candidate
		if n*10 > s.count {
			return s.commit(n, b)
		}
		return Step{Echo: b}

	case b == keyDelete || b == keyBackspace:
		if len(s.buf) == 0 {
			return Step{}
		}
		s.buf = s.buf[:len(s.buf)-1]
		return Step{Erase: true}
	}

	return Step{}
}

func (s *Session) inRange(n int) bool {
	return n >= 1 && n <= s.count
}

func (s *Session) commit(n int, echo byte) Step {
	s.final = Step{Outcome: Committed, Index: n}
	return Step{Echo: echo, Outcome: Committed, Index: n}
}

func (s *Session) cancel() Step {
	s.final = Step{Outcome: Cancelled}
	return s.final
}
