package physics

import "strconv"

// Handle identifies a body inside a World. The zero Handle never refers to a
// body. A handle goes stale once the body's removal has been applied, even if
// its slot is reused later.
type Handle uint64

type handleID uint32
type generation uint32

const handleIDBits = 32

func makeHandle(id handleID, gen generation) Handle {
	return Handle(uint64(gen)<<handleIDBits | uint64(id))
}

func (h Handle) id() handleID {
	return handleID(uint32(h))
}

func (h Handle) generation() generation {
	return generation(uint32(uint64(h) >> handleIDBits))
}

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

func (h Handle) Valid() bool {
	return h.id() > 0
}

// handleStore tracks handle generations and free ids.
type handleStore struct {
	nextID handleID
	gen    []generation
	free   []handleID
}

func (s *handleStore) create() Handle {
	var id handleID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.nextID++
		id = s.nextID
		s.gen = append(s.gen, 0)
	}
	return makeHandle(id, s.gen[id-1])
}

func (s *handleStore) destroy(h Handle) bool {
	if !s.isAlive(h) {
		return false
	}
	id := h.id()
	s.gen[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *handleStore) isAlive(h Handle) bool {
	id := h.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == h.generation()
}
