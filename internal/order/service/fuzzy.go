package service

import "strings"

// damerauLevenshtein: edit distance with adjacent transpositions.
func damerauLevenshtein(a, b []rune) int {
	al, bl := len(a), len(b)

	dp := make([][]int, al+1)
	for i := 0; i <= al; i++ {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			// insert / delete / substitute
			d := dp[i-1][j] + 1
			if v := dp[i][j-1] + 1; v < d {
				d = v
			}
			if v := dp[i-1][j-1] + cost; v < d {
				d = v
			}
			// transpose adjacent
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if v := dp[i-2][j-2] + 1; v < d {
					d = v
				}
			}
			dp[i][j] = d
		}
	}
	return dp[al][bl]
}

func similarity(a, b []rune) float64 {
	m := len(a)
	if len(b) > m {
		m = len(b)
	}
	if m == 0 {
		return 1
	}
	return 1 - float64(damerauLevenshtein(a, b))/float64(m)
}

// partialRatio scores the best alignment of the shorter string against
// any same-length window of the longer one, 0..100. A verbatim substring
// scores 100.
func partialRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if strings.Contains(long, short) {
		return 100
	}

	rs := []rune(short)
	rl := []rune(long)
	if len(rs) >= len(rl) {
		return similarity(rs, rl) * 100
	}

	best := 0.0
	for i := 0; i+len(rs) <= len(rl); i++ {
		if s := similarity(rs, rl[i:i+len(rs)]); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best * 100
}
