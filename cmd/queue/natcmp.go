package queue

const caseBit = ' '

func foldAt(s string, i int) byte {
	if i >= len(s) {
		return caseBit
	}
	return s[i] | caseBit
}

// NatCaseCompare orders by folded first byte, then by length, then by the
// remaining folded bytes. Length is decided before the body, so "az" sorts
// before "aaa".
func NatCaseCompare(a, b string) int {
	c1, c2 := foldAt(a, 0), foldAt(b, 0)
	if c1 < c2 {
		return -1
	}
	if c1 > c2 {
		return 1
	}

	if len(a) < len(b) {
		return -1
	}
	if len(a) > len(b) {
		return 1
	}

	for i := 1; i < len(a); i++ {
		c1, c2 = foldAt(a, i), foldAt(b, i)
		if c1 != c2 {
			if c1 < c2 {
				return -1
			}
			return 1
		}
	}
	return 0
}
