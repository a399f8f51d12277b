package models

// Pair is an unordered combination of two distinct items. A is shown on the
// left and B on the right; the orientation is fixed once a queue is built.
type Pair struct {
	A string `json:"song_a"`
	B string `json:"song_b"`
}

// Key returns the orientation-independent form of the pair.
func (p Pair) Key() Pair {
	if p.B < p.A {
		return Pair{A: p.B, B: p.A}
	}
	return p
}

// Reversed returns the pair with its items swapped.
func (p Pair) Reversed() Pair {
	return Pair{A: p.B, B: p.A}
}

// Judgment is one recorded similarity score for a pair.
// Field order is the export key order.
type Judgment struct {
	SongA string  `json:"song_a"`
	SongB string  `json:"song_b"`
	Score float64 `json:"similarity_score"`
}

// Pair returns the pair the judgment was recorded for.
func (j Judgment) Pair() Pair {
	return Pair{A: j.SongA, B: j.SongB}
}

// Progress reports how much of an item set has been judged.
type Progress struct {
	Judged int `json:"judged"`
	Total  int `json:"total"`
}

// Remaining is the number of pairs still waiting for a judgment.
func (p Progress) Remaining() int {
	return p.Total - p.Judged
}

// Fraction returns Judged/Total, or 0 when there is nothing to judge.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Judged) / float64(p.Total)
}
