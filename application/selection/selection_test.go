package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClick_StateMachine(t *testing.T) {
	s := New(2)
	assert.Equal(t, StateEmpty, s.State())

	assert.True(t, s.Click("a"))
	assert.Equal(t, StateOne, s.State())

	assert.True(t, s.Click("a"), "clicking the same node toggles it off")
	assert.Equal(t, StateEmpty, s.State())

	s.Click("a")
	s.Click("b")
	assert.Equal(t, StateTwo, s.State())

	assert.False(t, s.Click("c"), "third click is ignored")
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	assert.True(t, s.Click("a"))
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestPair(t *testing.T) {
	s := New(2)
	_, _, ok := s.Pair()
	assert.False(t, ok)

	s.Click("b")
	s.Click("a")
	first, second, ok := s.Pair()
	assert.True(t, ok)
	assert.Equal(t, "b", first)
	assert.Equal(t, "a", second)
}

func TestReplace_Unbounded(t *testing.T) {
	s := New(2)
	assert.True(t, s.Replace([]string{"a", "b", "c", "a", ""}))
	assert.Equal(t, StateMulti, s.State())
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
	assert.False(t, s.Replace([]string{"a", "b", "c"}))

	assert.False(t, s.Click("d"), "clicks stay capped after a multi-select")
	assert.True(t, s.Click("b"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
}

func TestClearAndPrune(t *testing.T) {
	s := New(2)
	assert.False(t, s.Clear())
	s.Replace([]string{"a", "b", "c"})

	assert.True(t, s.Prune(func(id string) bool { return id != "b" }))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.False(t, s.Prune(func(string) bool { return true }))

	assert.True(t, s.Clear())
	assert.Zero(t, s.Len())
}

func TestIDs_ReturnsCopy(t *testing.T) {
	s := New(2)
	s.Click("a")
	ids := s.IDs()
	ids[0] = "z"
	assert.True(t, s.Contains("a"))
}
