package placequiz

import "math"

// Progress is the position of a session in its question sequence. The
// server record and the client state both carry it.
type Progress struct {
	Total   int `json:"total"`
	Index   int `json:"current_index"`
	Correct int `json:"correct_count"`
}

// Completed reports whether every question has been answered.
func (p Progress) Completed() bool {
	return p.Index >= p.Total
}

// Position is the 1-based number of the question currently shown.
func (p Progress) Position() int {
	return p.Index + 1
}

// Advance records one answered question.
func (p Progress) Advance(correct bool) Progress {
	p.Index++
	if correct {
		p.Correct++
	}
	return p
}

// Accuracy is the share of correct answers over the whole session as a
// percentage rounded to two decimals.
func (p Progress) Accuracy() float64 {
	if p.Total <= 0 {
		return 0
	}
	return math.Round(float64(p.Correct)/float64(p.Total)*100*100) / 100
}

// Valid checks 0 <= Correct <= Index <= Total.
func (p Progress) Valid() bool {
	return p.Correct >= 0 && p.Correct <= p.Index && p.Index <= p.Total
}
