package model

// Progress is a snapshot of a running stage. Percent is computed against
// Total, which degrades to 1 when nothing is counted so the result stays
// defined.
type Progress struct {
	Stage   string `json:"stage"`
	Item    string `json:"item"`
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

// NewProgress builds a Progress and clamps Percent into [0, 100].
func NewProgress(stage, item string, done, total int) Progress {
	denom := total
	if denom <= 0 {
		denom = 1
	}
	pct := done * 100 / denom
	pct = min(max(pct, 0), 100)
	return Progress{
		Stage:   stage,
		Item:    item,
		Done:    done,
		Total:   total,
		Percent: pct,
	}
}

// ProgressFunc receives progress updates. A nil ProgressFunc discards them.
type ProgressFunc func(Progress)

// Report calls f when it is set.
func (f ProgressFunc) Report(stage, item string, done, total int) {
	if f == nil {
		return
	}
	f(NewProgress(stage, item, done, total))
}
