package utils

// Index is the integer array type shared by the sparse engine and its backends.
// Coordinate rows, sort permutations and linear keys are all Index values.
type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Copy() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

func (I Index) Subset(J Index) (r Index) {
	r = make(Index, len(J))
	for j, val := range J {
		r[j] = I[val]
	}
	return
}

func (I Index) Concat(J Index) (r Index) {
	r = make(Index, len(I)+len(J))
	copy(r, I)
	copy(r[len(I):], J)
	return
}

func (I Index) Equal(J Index) bool {
	if len(I) != len(J) {
		return false
	}
	for i, val := range I {
		if J[i] != val {
			return false
		}
	}
	return true
}

// Set returns a membership lookup for the values in I
func (I Index) Set() (s map[int]struct{}) {
	s = make(map[int]struct{}, len(I))
	for _, val := range I {
		s[val] = struct{}{}
	}
	return
}
