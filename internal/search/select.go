package search

// Budget constrains a selection. Zero MaxBytes or MaxTokens means that
// dimension is unlimited; zero MinScore means no threshold.
type Budget struct {
	MaxBytes  int64
	MaxTokens int64
	MinScore  float64
}

// bytesPerToken is the approximation used for the token budget.
const bytesPerToken = 4

// EstimateTokens approximates a file's token count from its byte size.
func EstimateTokens(size int64) int64 {
	return size / bytesPerToken
}

// Candidate pairs a fused file with its size.
type Candidate struct {
	FusedFile
	Size int64
}

// Select walks candidates in fused order and admits files greedily
// until the next file would exceed the budget. The first candidate is
// always admitted, so callers get at least one file even under a tiny
// budget. Selection stops at the first file that does not fit; nothing
// later is considered.
func Select(candidates []Candidate, budget Budget) []Candidate {
	var selected []Candidate
	var usedBytes, usedTokens int64

	for _, c := range candidates {
		if budget.MinScore > 0 && c.Score < budget.MinScore {
			continue
		}

		tokens := EstimateTokens(c.Size)
		if len(selected) > 0 {
			if budget.MaxBytes > 0 && usedBytes+c.Size > budget.MaxBytes {
				break
			}
			if budget.MaxTokens > 0 && usedTokens+tokens > budget.MaxTokens {
				break
			}
		}

		selected = append(selected, c)
		usedBytes += c.Size
		usedTokens += tokens
	}
	return selected
}
