package ranking

import (
	"math"
	"sort"
)

// DCGAtK is the discounted cumulative gain of relevances, already in ranked order
func DCGAtK(relevances []float64, k int) float64 {
	dcg := 0.0
	for i, rel := range relevances {
		if i >= k {
			break
		}
		dcg += gain(rel) / discount(i)
	}
	return dcg
}

// NDCGAtK normalizes DCGAtK by the DCG of the ideal ordering.
// It is 0 for an empty list or when no item is relevant.
func NDCGAtK(relevances []float64, k int) float64 {
	if len(relevances) == 0 || k <= 0 {
		return 0
	}
	idcg := idealDCG(relevances, k)
	if idcg == 0 {
		return 0
	}
	return DCGAtK(relevances, k) / idcg
}

// NDCGForScores ranks items by predicted score and computes NDCG@k against
// their true relevances. Items with tied scores share the average gain of
// their group, so the result does not depend on how ties are ordered.
func NDCGForScores(relevances, scores []float64, k int) float64 {
	if len(relevances) == 0 || len(relevances) != len(scores) || k <= 0 {
		return 0
	}
	idcg := idealDCG(relevances, k)
	if idcg == 0 {
		return 0
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	dcg := 0.0
	for start := 0; start < len(order) && start < k; {
		end := start + 1
		for end < len(order) && scores[order[end]] == scores[order[start]] {
			end++
		}
		groupGain := 0.0
		for _, idx := range order[start:end] {
			groupGain += gain(relevances[idx])
		}
		groupGain /= float64(end - start)
		for pos := start; pos < end && pos < k; pos++ {
			dcg += groupGain / discount(pos)
		}
		start = end
	}
	return dcg / idcg
}

// MeanNDCGAtK averages NDCGForScores over queries; 0 when there are none
func MeanNDCGAtK(allRelevances, allScores [][]float64, k int) float64 {
	if len(allRelevances) == 0 || len(allRelevances) != len(allScores) {
		return 0
	}
	sum := 0.0
	for i := range allRelevances {
		sum += NDCGForScores(allRelevances[i], allScores[i], k)
	}
	return sum / float64(len(allRelevances))
}

func idealDCG(relevances []float64, k int) float64 {
	ideal := append([]float64(nil), relevances...)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	return DCGAtK(ideal, k)
}

func gain(rel float64) float64 {
	return math.Pow(2, rel) - 1
}

func discount(pos int) float64 {
	return math.Log2(float64(pos) + 2)
}
