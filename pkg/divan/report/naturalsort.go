package report

// NaturalLess implements natural-sort ordering: embedded runs of digits
// compare by numeric value rather than lexicographically, so "a2" sorts
// before "a10". No dependency in the retrieval pack provides this
// comparator (see DESIGN.md); it is small enough, and specific enough to
// Divan's path-sorting requirement, that pulling in a third-party
// natural-sort library would not meaningfully reduce risk or code.
// Exported so the driver can walk the registry in the same order the
// rendered tree uses.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		switch {
		case isDigit(ca) && isDigit(cb):
			na, ni := scanNumber(a, i)
			nb, nj := scanNumber(b, j)
			if na != nb {
				return na < nb
			}
			i, j = ni, nj
		case ca != cb:
			return ca < cb
		default:
			i++
			j++
		}
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanNumber reads the maximal run of digits starting at i and returns
// its numeric value along with the index just past the run. Runs longer
// than can fit in a uint64 saturate rather than overflow.
func scanNumber(s string, i int) (uint64, int) {
	var n uint64
	start := i
	for i < len(s) && isDigit(s[i]) {
		d := uint64(s[i] - '0')
		const maxUint64 = ^uint64(0)
		if n > (maxUint64-d)/10 {
			n = maxUint64 // saturate
		} else {
			n = n*10 + d
		}
		i++
	}
	if i == start {
		return 0, i
	}
	return n, i
}
