package domain

// Pair is the canonical key of an unordered two-party conversation.
// The two uids are stored sorted, so {A,B} and {B,A} compare equal and the
// relevance check is a single comparison instead of two branches.
type Pair struct {
	low  string
	high string
}

func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{low: a, high: b}
}

// Key is a stable string form, usable as a map key or storage prefix.
func (p Pair) Key() string {
	return p.low + "|" + p.high
}

func (p Pair) Contains(uid string) bool {
	return p.low == uid || p.high == uid
}

// Matches reports whether a message belongs to this conversation.
func (p Pair) Matches(m Message) bool {
	return m.Pair() == p
}
