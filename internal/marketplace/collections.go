package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
)

type Jobs struct {
	Items []*JobProfile `json:"items"`
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *JobProfile {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// ReportByEmployer groups open jobs per employer with their competition
// bucket, mainly for interactive inspection.
func (j *Jobs) ReportByEmployer() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range j.Items {
		report[job.EmployerID] = append(report[job.EmployerID], map[string]string{
			"title":       job.Title,
			"budget":      fmt.Sprintf("%d-%d", job.BudgetMin, job.BudgetMax),
			"competition": CompetitionLevel(job.BidCount),
		})
	}
	return report
}

type Candidates struct {
	Items []*CandidateProfile `json:"items"`
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *CandidateProfile {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

// LoadJobsFromFile reads a jobs fixture. An empty file yields an empty list.
func LoadJobsFromFile(path string) (*Jobs, error) {
	jobs := &Jobs{}
	if err := loadJSONFile(path, jobs); err != nil {
		return nil, fmt.Errorf("loading jobs from %q: %w", path, err)
	}
	return jobs, nil
}

// LoadCandidatesFromFile reads a candidates fixture.
func LoadCandidatesFromFile(path string) (*Candidates, error) {
	candidates := &Candidates{}
	if err := loadJSONFile(path, candidates); err != nil {
		return nil, fmt.Errorf("loading candidates from %q: %w", path, err)
	}
	return candidates, nil
}

func loadJSONFile(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	if stat.Size() == 0 {
		return nil
	}

	return json.NewDecoder(file).Decode(target)
}
