package digitbinindex

import "sort"

// idSet is the member set of a leaf bin: sorted, unique ids. Every member of
// a bin shares the same binned weight, so ids are all a leaf needs to store.
// Keeping them sorted gives multi-draws a deterministic pick inside a bin and
// keeps the serialized form delta-friendly.
type idSet struct {
	ids []uint32
}

func (s idSet) len() int {
	return len(s.ids)
}

func (s idSet) at(index int) uint32 {
	return s.ids[index]
}

func (s idSet) findIndex(id uint32) int {
	// Most bins stay small; a linear scan beats the binary search there.
	if len(s.ids) < 30 {
		for i, item := range s.ids {
			if item >= id {
				return i
			}
		}
		return len(s.ids)
	}

	return sort.Search(len(s.ids), func(i int) bool {
		return s.ids[i] >= id
	})
}

// add inserts id, keeping the set sorted. Returns false on a duplicate.
func (s *idSet) add(id uint32) bool {
	idx := s.findIndex(id)

	if idx < len(s.ids) && s.ids[idx] == id {
		return false
	}

	s.ids = append(s.ids, 0)
	copy(s.ids[idx+1:], s.ids[idx:])
	s.ids[idx] = id
	return true
}

// remove deletes id. Returns false when it was not a member.
func (s *idSet) remove(id uint32) bool {
	idx := s.findIndex(id)

	if idx >= len(s.ids) || s.ids[idx] != id {
		return false
	}

	s.ids = append(s.ids[:idx], s.ids[idx+1:]...)
	return true
}

func (s idSet) contains(id uint32) bool {
	idx := s.findIndex(id)
	return idx < len(s.ids) && s.ids[idx] == id
}

// firstNotIn returns the smallest member absent from excluded.
func (s idSet) firstNotIn(excluded map[uint32]struct{}) (uint32, bool) {
	for _, id := range s.ids {
		if _, ok := excluded[id]; !ok {
			return id, true
		}
	}
	return 0, false
}
