package mutex

import "fmt"

// MutexStore holds, for each value id, the ordered list of value ids it is
// pairwise incompatible with. It is a sparse symmetric adjacency built
// from user predicates in Manager.AddConstraint: j is in mutex[i] iff i is
// in mutex[j]. Per-value adjacency lists rather than a dense bitmap, since
// most values are mutex with only a small fraction of the rest.
//
// A store's length is fixed at construction to the size of the value
// table at the moment the first constraint is posted (Manager allocates
// it lazily on that first call).
type MutexStore struct {
	lists [][]int
}

// NewMutexStore returns a store with n empty adjacency lists.
func NewMutexStore(n int) *MutexStore {
	return &MutexStore{lists: make([][]int, n)}
}

// Size returns the number of value ids this store covers.
func (m *MutexStore) Size() int {
	return len(m.lists)
}

func (m *MutexStore) bounds(i int) error {
	if i < 0 || i >= len(m.lists) {
		return fmt.Errorf("mutex: value index %d out of [0,%d): %w", i, len(m.lists), ErrOutOfRange)
	}
	return nil
}

// Set appends j to mutex[i]. It performs no deduplication within a single
// call; callers establish symmetry explicitly by calling Set(i, j) and
// Set(j, i) (see Manager.AddConstraint), and are responsible for not
// posting the same pair twice.
func (m *MutexStore) Set(i, j int) error {
	if err := m.bounds(i); err != nil {
		return err
	}
	m.lists[i] = append(m.lists[i], j)
	return nil
}

// Get returns the adjacency list for value i. The returned slice is a
// read-only view: callers must not mutate it.
func (m *MutexStore) Get(i int) ([]int, error) {
	if err := m.bounds(i); err != nil {
		return nil, err
	}
	return m.lists[i], nil
}

// Find reports whether j appears in mutex[i], via a linear scan of
// mutex[i]. Intended for testing and for symmetric queries where an O(deg)
// scan is acceptable.
func (m *MutexStore) Find(i, j int) (bool, error) {
	list, err := m.Get(i)
	if err != nil {
		return false, err
	}
	for _, v := range list {
		if v == j {
			return true, nil
		}
	}
	return false, nil
}

// Equal reports whether two stores have the same length and the same
// adjacency lists in the same order.
func (m *MutexStore) Equal(other *MutexStore) bool {
	if other == nil || len(m.lists) != len(other.lists) {
		return false
	}
	for i, list := range m.lists {
		o := other.lists[i]
		if len(list) != len(o) {
			return false
		}
		for k, v := range list {
			if v != o[k] {
				return false
			}
		}
	}
	return true
}
