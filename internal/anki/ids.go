package anki

import "math/rand/v2"

// Model and deck identifiers are drawn uniformly from [2^30, 2^31), the
// range Anki itself uses for locally created objects. Ids only need to be
// distinct within a single build, so draws are repeated on the rare
// in-call collision.
const (
	idRangeMin = int64(1) << 30
	idRangeMax = int64(1) << 31
)

// idAssigner hands out call-scoped random identifiers, unique within one
// build only.
type idAssigner struct {
	seen map[int64]struct{}
}

func newIDAssigner() *idAssigner {
	return &idAssigner{seen: make(map[int64]struct{})}
}

// Next returns a fresh identifier not yet issued by this assigner.
func (a *idAssigner) Next() int64 {
	for {
		id := idRangeMin + rand.Int64N(idRangeMax-idRangeMin)
		if _, dup := a.seen[id]; dup {
			continue
		}
		a.seen[id] = struct{}{}
		return id
	}
}
