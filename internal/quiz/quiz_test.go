package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(number int, selections ...Selection) Item {
	return Item{Number: number, Title: "q", Selections: selections}
}

func answered(it Item, selectionID int) Item {
	it.UserAnswer = &selectionID
	return it
}

func twoChoices(correctID int) []Selection {
	return []Selection{
		{ID: 1, Content: "a", Correct: correctID == 1},
		{ID: 2, Content: "b", Correct: correctID == 2},
	}
}

func TestMergeDedupesByNumber(t *testing.T) {
	existing := []Item{item(1), item(2), item(3)}
	incoming := []Item{item(2), item(3), item(4), item(5)}

	merged := Merge(existing, incoming)

	var numbers []int
	for _, it := range merged {
		numbers = append(numbers, it.Number)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, numbers)
}

func TestMergeRedeliveryIsIdempotent(t *testing.T) {
	existing := []Item{item(1), item(2)}
	incoming := []Item{item(1), item(2)}

	merged := Merge(existing, incoming)
	assert.Len(t, merged, 2)

	// Merging the same batch again does not grow the result.
	merged = Merge(merged, incoming)
	assert.Len(t, merged, 2)
}

func TestMergeIntoEmpty(t *testing.T) {
	merged := Merge(nil, []Item{item(1), item(2)})
	assert.Len(t, merged, 2)
}

func TestMergePreservesArrivalOrder(t *testing.T) {
	merged := Merge([]Item{item(3)}, []Item{item(5), item(1), item(4)})

	var numbers []int
	for _, it := range merged {
		numbers = append(numbers, it.Number)
	}
	assert.Equal(t, []int{3, 5, 1, 4}, numbers)
}

func TestScoreUnansweredIsIncorrect(t *testing.T) {
	items := []Item{
		answered(item(1, twoChoices(1)...), 1), // correct
		item(2, twoChoices(2)...),              // unanswered
	}

	res := Score(items)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 50, res.ScorePercent)
}

func TestScoreRounds(t *testing.T) {
	items := []Item{
		answered(item(1, twoChoices(1)...), 1),
		answered(item(2, twoChoices(1)...), 1),
		answered(item(3, twoChoices(1)...), 2), // wrong
	}

	res := Score(items)
	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 67, res.ScorePercent) // round(2/3*100)
}

func TestScoreEmpty(t *testing.T) {
	res := Score(nil)
	assert.Equal(t, 0, res.TotalQuestions)
	assert.Equal(t, 0, res.ScorePercent)
}

func TestAnsweredCorrectlyWithZeroSelectionID(t *testing.T) {
	// Selection IDs may legitimately be 0; nil must remain the only
	// "unanswered" representation.
	it := item(1, Selection{ID: 0, Content: "a", Correct: true}, Selection{ID: 1, Content: "b"})
	assert.False(t, it.AnsweredCorrectly())

	it = answered(it, 0)
	assert.True(t, it.Answered())
	assert.True(t, it.AnsweredCorrectly())
}

func TestExplanationForLookupByNumber(t *testing.T) {
	explanations := []Explanation{
		{Number: 3, Explanation: "third"},
		{Number: 1, Explanation: "first"},
	}

	e, ok := ExplanationFor(explanations, 1)
	require.True(t, ok)
	assert.Equal(t, "first", e.Explanation)

	_, ok = ExplanationFor(explanations, 2)
	assert.False(t, ok)
}

func TestValidateChunk(t *testing.T) {
	valid := []byte(`{
		"problemSetId": "ps-1",
		"quiz": [{
			"number": 1,
			"title": "What is a goroutine?",
			"selections": [
				{"id": 1, "content": "a thread", "correct": false},
				{"id": 2, "content": "a lightweight routine", "correct": true}
			]
		}]
	}`)

	chunk, err := ValidateChunk(valid)
	require.NoError(t, err)
	assert.Equal(t, "ps-1", chunk.ProblemSetID)
	require.Len(t, chunk.Quiz, 1)
	assert.Equal(t, 1, chunk.Quiz[0].Number)
}

func TestValidateChunkRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"problemSetId":`},
		{"missing problemSetId", `{"quiz": []}`},
		{"missing selections", `{"problemSetId": "ps", "quiz": [{"number": 1, "title": "t"}]}`},
		{"single selection", `{"problemSetId": "ps", "quiz": [{"number": 1, "title": "t", "selections": [{"id": 1, "content": "a", "correct": true}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateChunk([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
