package quiz

import "math"

// Result summarizes a solved problem set.
type Result struct {
	TotalQuestions int
	CorrectCount   int
	ScorePercent   int
}

// Score computes the result for a set of items. An unanswered item counts
// as incorrect. An empty set scores zero.
func Score(items []Item) Result {
	res := Result{TotalQuestions: len(items)}
	if len(items) == 0 {
		return res
	}

	for i := range items {
		if items[i].AnsweredCorrectly() {
			res.CorrectCount++
		}
	}
	res.ScorePercent = int(math.Round(float64(res.CorrectCount) / float64(res.TotalQuestions) * 100))
	return res
}
