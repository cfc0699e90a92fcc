package allocator

// combinations calls visit with every k-element index tuple drawn from
// [0, n), in lexicographic order. The slice passed to visit is reused
// between calls. Returning false from visit stops the enumeration.
//
// Precondition: 0 <= k <= n.
// Postcondition: visit is called C(n, k) times unless stopped early.
func combinations(n, k int, visit func(idx []int) bool) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !visit(idx) {
			return
		}
		// Find the rightmost index that can still advance.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
