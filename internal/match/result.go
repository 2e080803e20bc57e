package match

import (
	"encoding/json"
	"os"
	"time"
)

// Source tells which path produced a score.
type Source string

const (
	SourceExternal      Source = "external"
	SourceDeterministic Source = "deterministic"
)

// Result is a computed compatibility score between one job and one
// candidate. It is either fully constructed or not produced at all.
type Result struct {
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	Score       int       `json:"score"`
	Reason      string    `json:"reason"`
	Source      Source    `json:"source"`
	ComputedAt  time.Time `json:"computed_at"`
}

type Results struct {
	Items []*Result `json:"items"`
}

func (r *Results) Len() int {
	return len(r.Items)
}

// DumpToTmpFile writes the ranked results to a temp JSON file and returns
// its name.
func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// CountBySource reports how many results each scoring path produced.
func (r *Results) CountBySource() map[Source]int {
	counts := make(map[Source]int)
	for _, result := range r.Items {
		counts[result.Source]++
	}
	return counts
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
