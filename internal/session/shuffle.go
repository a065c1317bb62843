package session

import "math/rand/v2"

// ShuffledOrder returns a uniformly random permutation of [0, n) using the
// Fisher-Yates shuffle. Every session gets a fresh permutation; orders are
// never reused across sessions.
func ShuffledOrder(n int) []int {
	order := identityOrder(n)
	for i := n - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
