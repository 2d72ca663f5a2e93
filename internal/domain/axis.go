package domain

// gatherAxis selects the indices idx along one axis of a row-major array
// with the given shape. Indices may repeat or be reordered.
func gatherAxis(data []float64, shape []int, axis int, idx []int) ([]float64, []int) {
	outer := product(shape[:axis])
	n := shape[axis]
	inner := product(shape[axis+1:])

	out := make([]float64, outer*len(idx)*inner)
	for o := 0; o < outer; o++ {
		for k, src := range idx {
			dst := (o*len(idx) + k) * inner
			from := (o*n + src) * inner
			copy(out[dst:dst+inner], data[from:from+inner])
		}
	}

	newShape := append([]int(nil), shape...)
	newShape[axis] = len(idx)
	return out, newShape
}

func product(shape []int) int {
	p := 1
	for _, n := range shape {
		p *= n
	}
	return p
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = values[i]
	}
	return out
}

func reversedIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return idx
}

func isStrictlyIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}

func isStrictlyDecreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return true
}
