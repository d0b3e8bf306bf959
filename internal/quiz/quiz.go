// Package quiz holds the domain types for generated problem sets and the
// pure logic over them: chunk merging, scoring, and explanation lookup.
package quiz

// Selection is one answer option of a quiz item.
type Selection struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

// Item is a single quiz question. Number is the 1-based position and the
// stable identity of the item within a problem set.
//
// UserAnswer is nil while the item is unanswered. A pointer is used rather
// than a zero sentinel so that a selection with ID 0 remains representable.
type Item struct {
	Number     int         `json:"number"`
	Title      string      `json:"title"`
	Selections []Selection `json:"selections"`
	UserAnswer *int        `json:"userAnswer,omitempty"`
	Check      bool        `json:"check"`
}

// Answered reports whether the solver has picked a selection.
func (it *Item) Answered() bool {
	return it.UserAnswer != nil
}

// CorrectSelection returns the correct selection, or nil when the item
// carries none (malformed server data).
func (it *Item) CorrectSelection() *Selection {
	for i := range it.Selections {
		if it.Selections[i].Correct {
			return &it.Selections[i]
		}
	}
	return nil
}

// AnsweredCorrectly reports whether the chosen selection is the correct one.
// Unanswered items are never correct.
func (it *Item) AnsweredCorrectly() bool {
	if it.UserAnswer == nil {
		return false
	}
	correct := it.CorrectSelection()
	return correct != nil && correct.ID == *it.UserAnswer
}

// Merge appends incoming items to existing in arrival order, skipping any
// item whose Number is already present. Redelivering a known item never
// grows the result, so stream reconnects that overlap already-fetched data
// are safe.
func Merge(existing, incoming []Item) []Item {
	seen := make(map[int]bool, len(existing))
	for _, it := range existing {
		seen[it.Number] = true
	}

	merged := existing
	for _, it := range incoming {
		if seen[it.Number] {
			continue
		}
		seen[it.Number] = true
		merged = append(merged, it)
	}
	return merged
}

// Explanation is the server-provided rationale for one item, keyed by the
// item's Number.
type Explanation struct {
	Number          int    `json:"number"`
	Explanation     string `json:"explanation"`
	ReferencedPages []int  `json:"referencedPages"`
}

// ExplanationFor returns the explanation matching the item number. Lookup is
// by Number, never by slice index: filtered views (e.g. wrong answers only)
// change the index-to-item mapping.
func ExplanationFor(explanations []Explanation, number int) (Explanation, bool) {
	for _, e := range explanations {
		if e.Number == number {
			return e, true
		}
	}
	return Explanation{}, false
}
