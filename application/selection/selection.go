// Package selection tracks which nodes the user has picked. Clicks build an
// ordered pick of at most two nodes for binary commands; select-all and
// drag-rectangle replace it with an unbounded set.
package selection

// State names the selection shape
type State string

const (
	StateEmpty State = "empty"
	StateOne   State = "one"
	StateTwo   State = "two"
	StateMulti State = "multi"
)

// DefaultClickCap is how many nodes clicks alone may select
const DefaultClickCap = 2

// Selection is an ordered set of node ids. Not safe for concurrent use.
type Selection struct {
	ids      []string
	clickCap int
}

// New creates an empty selection
func New(clickCap int) *Selection {
	if clickCap <= 0 {
		clickCap = DefaultClickCap
	}
	return &Selection{clickCap: clickCap}
}

// Click toggles id. A click on an unselected node once the click cap is
// reached is ignored. Reports whether the selection changed.
func (s *Selection) Click(id string) bool {
	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return true
	}
	if len(s.ids) >= s.clickCap {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Replace selects exactly ids, without the click cap. Duplicates are dropped.
func (s *Selection) Replace(ids []string) bool {
	next := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	if equal(s.ids, next) {
		return false
	}
	s.ids = next
	return true
}

// Clear empties the selection
func (s *Selection) Clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = nil
	return true
}

// Prune drops ids for which keep returns false
func (s *Selection) Prune(keep func(id string) bool) bool {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if keep(id) {
			kept = append(kept, id)
		}
	}
	changed := len(kept) != len(s.ids)
	s.ids = kept
	return changed
}

// IDs returns the selected ids in pick order
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Pair returns the two picked ids, or ok=false for any other arity
func (s *Selection) Pair() (first, second string, ok bool) {
	if len(s.ids) != 2 {
		return "", "", false
	}
	return s.ids[0], s.ids[1], true
}

// Contains reports whether id is selected
func (s *Selection) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

// Len returns the number of selected nodes
func (s *Selection) Len() int {
	return len(s.ids)
}

// State returns the selection shape
func (s *Selection) State() State {
	switch len(s.ids) {
	case 0:
		return StateEmpty
	case 1:
		return StateOne
	case 2:
		return StateTwo
	default:
		return StateMulti
	}
}

func (s *Selection) indexOf(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
