package utils

// Binary search over a sorted slice that compares by index, so callers can look into
// the element in place (e.g. a field of a struct). cmp(i, target) is negative while
// x[i] sorts before target. Returns the insertion point and whether x[i] equals target.
func BinarySearchIdxFunc[S ~[]E, E, T any](x S, target T, cmp func(int, T) int) (int, bool) {
	lo, hi := 0, len(x)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp(mid, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(x) && cmp(lo, target) == 0
}
