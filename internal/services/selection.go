package services

import "classlottery/internal/models"

// DrawFilter narrows the pool before a draw. Empty fields do not constrain.
// Matching is exact and case-sensitive.
type DrawFilter struct {
	Gender    string
	ClassName string
}

// Matches reports whether s passes the filter.
func (f DrawFilter) Matches(s models.Student) bool {
	if f.Gender != "" && s.GenderValue() != f.Gender {
		return false
	}
	if f.ClassName != "" && s.ClassValue() != f.ClassName {
		return false
	}
	return true
}

// Apply returns the students of pool that match the filter, in pool order.
func (f DrawFilter) Apply(pool []models.Student) []models.Student {
	eligible := make([]models.Student, 0, len(pool))
	for _, s := range pool {
		if f.Matches(s) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

// DrawOne picks one student uniformly at random from the filtered pool.
// It returns nil when nobody matches.
func DrawOne(rng Randomizer, pool []models.Student, filter DrawFilter) *models.Student {
	eligible := filter.Apply(pool)
	if len(eligible) == 0 {
		return nil
	}
	winner := eligible[rng.IntN(len(eligible))]
	return &winner
}

// DrawMany picks min(count, |filtered pool|) distinct students uniformly at
// random. A short result is not an error, and count is not range-checked
// here: count <= 0 yields an empty slice.
func DrawMany(rng Randomizer, pool []models.Student, count int, filter DrawFilter) []models.Student {
	eligible := filter.Apply(pool)
	if count <= 0 || len(eligible) == 0 {
		return []models.Student{}
	}
	if count > len(eligible) {
		count = len(eligible)
	}

	// Partial Fisher-Yates: the first count slots end up a uniform sample.
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	return eligible[:count]
}

// Group shuffles pool and splits it into consecutive groups of groupSize.
// The last group holds the remainder. An empty pool or groupSize < 1 yields
// no groups.
func Group(rng Randomizer, pool []models.Student, groupSize int) [][]models.Student {
	if groupSize < 1 || len(pool) == 0 {
		return nil
	}

	shuffled := make([]models.Student, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	groups := make([][]models.Student, 0, (len(shuffled)+groupSize-1)/groupSize)
	for start := 0; start < len(shuffled); start += groupSize {
		end := min(start+groupSize, len(shuffled))
		groups = append(groups, shuffled[start:end:end])
	}
	return groups
}

// excluding returns the students of pool whose id is not in excluded.
func excluding(pool []models.Student, excluded map[int64]bool) []models.Student {
	if len(excluded) == 0 {
		return pool
	}
	remaining := make([]models.Student, 0, len(pool))
	for _, s := range pool {
		if !excluded[s.ID] {
			remaining = append(remaining, s)
		}
	}
	return remaining
}
