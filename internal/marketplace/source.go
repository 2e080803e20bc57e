package marketplace

// Source is the data collaborator the matching engine pulls bounded pools
// from. Implementations are read-only; the engine never mutates profiles.
type Source interface {
	// OpenJobs returns up to limit open jobs, excluding postings owned by
	// the given employer. An empty employer ID disables the exclusion.
	OpenJobs(excludeEmployerID string, limit int) (*Jobs, error)

	// AvailableCandidates returns up to limit candidates that are available
	// and have a completed profile.
	AvailableCandidates(limit int) (*Candidates, error)
}

// FileSource serves pools from JSON fixture files. It stands in for the
// marketplace database in the CLI and in tests.
type FileSource struct {
	jobs       *Jobs
	candidates *Candidates
}

func NewFileSource(jobsPath, candidatesPath string) (*FileSource, error) {
	jobs, err := LoadJobsFromFile(jobsPath)
	if err != nil {
		return nil, err
	}

	candidates, err := LoadCandidatesFromFile(candidatesPath)
	if err != nil {
		return nil, err
	}

	return &FileSource{jobs: jobs, candidates: candidates}, nil
}

// NewStaticSource wraps already-loaded pools. Handy for tests.
func NewStaticSource(jobs *Jobs, candidates *Candidates) *FileSource {
	if jobs == nil {
		jobs = &Jobs{}
	}
	if candidates == nil {
		candidates = &Candidates{}
	}
	return &FileSource{jobs: jobs, candidates: candidates}
}

func (s *FileSource) OpenJobs(excludeEmployerID string, limit int) (*Jobs, error) {
	result := &Jobs{}
	for _, job := range s.jobs.Items {
		if !job.Open {
			continue
		}
		if excludeEmployerID != "" && job.EmployerID == excludeEmployerID {
			continue
		}
		result.Items = append(result.Items, job)
		if limit > 0 && result.Len() >= limit {
			break
		}
	}
	return result, nil
}

func (s *FileSource) AvailableCandidates(limit int) (*Candidates, error) {
	result := &Candidates{}
	for _, candidate := range s.candidates.Items {
		if !candidate.Available || !candidate.Completed() {
			continue
		}
		result.Items = append(result.Items, candidate)
		if limit > 0 && result.Len() >= limit {
			break
		}
	}
	return result, nil
}
