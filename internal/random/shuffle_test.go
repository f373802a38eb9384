package random

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleDeterministic(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}

	first := Shuffle(items, "seed-1")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Shuffle(items, "seed-1"))
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	for i := 0; i < 50; i++ {
		out := Shuffle(items, fmt.Sprintf("seed-%d", i))
		require.Len(t, out, len(items))
		assert.ElementsMatch(t, items, out)
	}
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	Shuffle(items, "seed")
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestShuffleDistinctSeeds(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	// With 20 items the odds of two seeds colliding on the identical
	// permutation are negligible; a match here means the seed is ignored.
	a := Shuffle(items, "session-a_Q1_ans")
	b := Shuffle(items, "session-b_Q1_ans")
	assert.NotEqual(t, a, b)
}

func TestShuffleEdgeSizes(t *testing.T) {
	assert.Empty(t, Shuffle([]string{}, "seed"))
	assert.Equal(t, []string{"only"}, Shuffle([]string{"only"}, "seed"))
}

func TestRoleSeedsAreIndependent(t *testing.T) {
	// The same question's subquestions and options must not share an order.
	assert.NotEqual(t, SubquestionSeed("s", "Q1"), OptionSeed("s", "Q1"))
	assert.NotEqual(t, SubquestionSeed("s", "Q1"), SubquestionSeed("s", "Q2"))
}

func TestSeedHashMatchesReferenceVectors(t *testing.T) {
	// Known values of the h = h*31 + c rolling hash; these pin the constants
	// so existing sessions never reshuffle after an upgrade.
	assert.Equal(t, uint32(0), seedHash(""))
	assert.Equal(t, uint32('a'), seedHash("a"))
	assert.Equal(t, uint32('a'*31+'b'), seedHash("ab"))
}
