package lib

// BiMap is a one-to-one index: every A is bound to at most one B and vice
// versa. It is not safe for concurrent use.
type BiMap[A comparable, B comparable] struct {
	a map[A]B
	b map[B]A
}

func (bm *BiMap[A, B]) GetB(a A) (B, bool) {
	val, ok := bm.a[a]
	return val, ok
}

func (bm *BiMap[A, B]) GetA(b B) (A, bool) {
	val, ok := bm.b[b]
	return val, ok
}

// Bind binds a and b. Returns false and leaves the index untouched if either
// side is already bound.
func (bm *BiMap[A, B]) Bind(a A, b B) bool {
	if bm.a == nil {
		bm.a = make(map[A]B)
		bm.b = make(map[B]A)
	}
	if _, exist := bm.a[a]; exist {
		return false
	}
	if _, exist := bm.b[b]; exist {
		return false
	}
	bm.a[a] = b
	bm.b[b] = a
	return true
}

// DeleteA removes the binding of a. Returns the B it was bound to.
func (bm *BiMap[A, B]) DeleteA(a A) (B, bool) {
	b, exist := bm.a[a]
	if exist == false {
		return b, false
	}
	delete(bm.a, a)
	delete(bm.b, b)
	return b, true
}

// DeleteB removes the binding of b. Returns the A it was bound to.
func (bm *BiMap[A, B]) DeleteB(b B) (A, bool) {
	a, exist := bm.b[b]
	if exist == false {
		return a, false
	}
	delete(bm.a, a)
	delete(bm.b, b)
	return a, true
}

func (bm *BiMap[A, B]) Len() int {
	return len(bm.a)
}

func (bm *BiMap[A, B]) ListA() []A {
	l := make([]A, 0, len(bm.a))
	for a := range bm.a {
		l = append(l, a)
	}
	return l
}

func (bm *BiMap[A, B]) Reset() {
	bm.a = nil
	bm.b = nil
}
