package models

// PrizeTier represents a single prize category in a batch prize draw.
// Tiers are drawn in the order they are submitted.
type PrizeTier struct {
	PrizeName   string `json:"prizeName"`
	WinnerCount int    `json:"winnerCount"`
}

// PrizeResult stores the outcome of one tier of a batch prize draw,
// linking the winners to the prize and to the persisted history row.
type PrizeResult struct {
	RecordID  int64     `json:"recordId"`
	PrizeName string    `json:"prizeName"`
	Requested int       `json:"requested"`
	Winners   []Student `json:"winners"`
}

// Short reports whether the pool ran out before the tier was filled.
func (r PrizeResult) Short() bool {
	return len(r.Winners) < r.Requested
}
