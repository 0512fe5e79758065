package mathx

import "golang.org/x/exp/constraints"

// ExactDiv returns a/b and whether the division left no remainder.
// Division by zero reports false.
func ExactDiv[T constraints.Unsigned](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, a%b == 0
}
