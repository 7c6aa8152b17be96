package renderer

// longestIncreasingSubsequence returns the positions in arr of one longest
// strictly increasing subsequence. Negative entries mark nodes with no old
// counterpart and never take part. Runs in O(n log n).
func longestIncreasingSubsequence(arr []int) []int {
	prev := make([]int, len(arr))
	result := make([]int, 0, len(arr))

	for i, v := range arr {
		if v < 0 {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				prev[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}

		// Binary search for the first tail that is >= v.
		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				prev[i] = result[lo-1]
			}
			result[lo] = i
		}
	}

	if len(result) == 0 {
		return nil
	}
	last := result[len(result)-1]
	for k := len(result) - 1; k >= 0; k-- {
		result[k] = last
		last = prev[last]
	}
	return result
}
