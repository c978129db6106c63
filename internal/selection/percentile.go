package selection

import (
	"math"
	"sort"
)

// RS 점수 범위
const (
	MinRSRating = 1
	MaxRSRating = 99
)

// PercentileRank returns the fractional rank of each value in (0, 1]
// 동점은 해당 순위들의 평균 (average method)
func PercentileRank(values []float64) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	for start := 0; start < n; {
		end := start
		for end+1 < n && values[order[end+1]] == values[order[start]] {
			end++
		}

		// 1-based 순위 start+1 ~ end+1 의 평균
		avg := float64(start+end+2) / 2
		for k := start; k <= end; k++ {
			ranks[order[k]] = avg / float64(n)
		}
		start = end + 1
	}

	return ranks
}

// RSRating converts a percentile rank to the 1~99 rating
// 0.5 경계는 짝수 쪽으로 반올림, 결과는 [1, 99] 로 제한
func RSRating(pct float64) int {
	rating := int(math.RoundToEven(pct * MaxRSRating))
	if rating < MinRSRating {
		return MinRSRating
	}
	if rating > MaxRSRating {
		return MaxRSRating
	}
	return rating
}
