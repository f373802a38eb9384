// Package random provides the deterministic permutation used for question,
// subquestion and answer-option order. The same (items, seed) pair always
// yields the same order, across processes, so a resumed or reloaded session
// sees options exactly where it left them.
package random

// seedHash derives a 32-bit state from the seed string with the polynomial
// rolling hash (h = h*31 + c) the rest of the platform uses; constants must
// not change or existing sessions would reshuffle on resume.
func seedHash(seed string) uint32 {
	var h uint32
	for _, c := range seed {
		h = (h << 5) - h + uint32(c)
	}
	return h
}

// mulberry32 is a tiny deterministic PRNG over 32-bit state. Each call
// advances the state and returns a float in [0, 1).
type mulberry32 struct {
	state uint32
}

func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = imul(t^(t>>15), t|1)
	t ^= t + imul(t^(t>>7), t|61)
	return float64((t^(t>>14))>>0) / 4294967296
}

// imul mirrors 32-bit integer multiplication with wraparound.
func imul(a, b uint32) uint32 {
	return uint32(uint64(a) * uint64(b))
}

// Shuffle returns a Fisher-Yates permutation of items driven by the seeded
// PRNG. The input slice is not modified.
func Shuffle[T any](items []T, seed string) []T {
	out := make([]T, len(items))
	copy(out, items)

	rng := mulberry32{state: seedHash(seed)}
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SubquestionSeed composes the seed for a question's subquestion order. The
// role suffix keeps it independent from the option order of the same
// question.
func SubquestionSeed(sessionSeed, questionCode string) string {
	return sessionSeed + "_" + questionCode + "_subq"
}

// OptionSeed composes the seed for a question's answer-option order.
func OptionSeed(sessionSeed, questionCode string) string {
	return sessionSeed + "_" + questionCode + "_ans"
}
