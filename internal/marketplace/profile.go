package marketplace

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Level is the ordinal experience tier used for graduated match scoring.
type Level int

const (
	LevelBeginner Level = iota + 1
	LevelIntermediate
	LevelExpert
)

const DefaultLevel = LevelIntermediate

// ParseLevel converts heterogeneous level representations (strings, numbers)
// into a Level. Unknown or missing values default to Intermediate: profiles
// frequently omit the field and a mid-tier guess penalizes nobody.
func ParseLevel(v any) Level {
	switch val := v.(type) {
	case Level:
		return clampLevel(val)
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "beginner", "junior", "entry":
			return LevelBeginner
		case "intermediate", "middle", "mid":
			return LevelIntermediate
		case "expert", "senior", "advanced":
			return LevelExpert
		default:
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return clampLevel(Level(n))
			}
			return DefaultLevel
		}
	case int:
		return clampLevel(Level(val))
	case float64:
		return clampLevel(Level(int(val)))
	default:
		return DefaultLevel
	}
}

func clampLevel(l Level) Level {
	if l < LevelBeginner || l > LevelExpert {
		return DefaultLevel
	}
	return l
}

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelExpert:
		return "expert"
	default:
		return "intermediate"
	}
}

// Weight returns the per-skill experience weight used by the legacy direct
// match ratio.
func (l Level) Weight() float64 {
	switch l {
	case LevelBeginner:
		return 1.0
	case LevelExpert:
		return 2.0
	default:
		return 1.5
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = ParseLevel(raw)
	return nil
}

// Importance is the tier of a job skill requirement. Required skills gate
// the main score component, preferred skills only add bonus points.
type Importance int

const (
	ImportanceRequired Importance = iota
	ImportancePreferred
)

func ParseImportance(v any) Importance {
	s, _ := v.(string)
	if strings.EqualFold(strings.TrimSpace(s), "preferred") {
		return ImportancePreferred
	}
	return ImportanceRequired
}

func (i Importance) String() string {
	if i == ImportancePreferred {
		return "preferred"
	}
	return "required"
}

func (i Importance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Importance) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = ParseImportance(raw)
	return nil
}

// SkillRequirement is a single posted job requirement, derived from the job
// at scoring time and never mutated.
type SkillRequirement struct {
	Name       string     `json:"name"`
	Level      Level      `json:"experience_level,omitempty"`
	Importance Importance `json:"importance,omitempty"`
}

// CandidateSkill is one canonical skill of a candidate profile.
type CandidateSkill struct {
	Name  string `json:"name" mapstructure:"name"`
	Level Level  `json:"experience_level,omitempty" mapstructure:"experience_level"`
}

// JobProfile is the read-only job view supplied by the data collaborator.
// Requirements carries the structured per-skill shape; older postings only
// have the flat KeySkills name list.
type JobProfile struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	EmployerID   string             `json:"employer_id,omitempty"`
	Open         bool               `json:"open"`
	Requirements []SkillRequirement `json:"requirements,omitempty"`
	KeySkills    []string           `json:"key_skills,omitempty"`
	Experience   Level              `json:"experience_level,omitempty"`
	BudgetMin    int                `json:"budget_min,omitempty"`
	BudgetMax    int                `json:"budget_max,omitempty"`
	BidCount     int                `json:"bid_count,omitempty"`
}

// Structured reports whether the job carries the per-skill requirement
// breakdown. Jobs without it are scored by the legacy flat-list strategy.
func (j *JobProfile) Structured() bool {
	return len(j.Requirements) > 0
}

// SkillNames returns the requirement names regardless of posting shape.
func (j *JobProfile) SkillNames() []string {
	if j.Structured() {
		names := make([]string, 0, len(j.Requirements))
		for _, r := range j.Requirements {
			names = append(names, r.Name)
		}
		return names
	}
	return j.KeySkills
}

// CandidateProfile is the read-only candidate view supplied by the data
// collaborator. Skills is kept raw: profiles arrive as bare name lists,
// name+level pairs or serialized blobs, and are normalized at scoring time.
type CandidateProfile struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Skills     any     `json:"skills,omitempty"`
	Experience Level   `json:"experience_level,omitempty"`
	HourlyRate float64 `json:"hourly_rate,omitempty"`
	Bio        string  `json:"bio,omitempty"`
	Available  bool    `json:"available"`
}

// Completed reports whether the profile has enough substance to be offered
// for matching.
func (c *CandidateProfile) Completed() bool {
	return strings.TrimSpace(c.Title) != "" || c.Skills != nil
}

// CompetitionLevel buckets a job's total bid count into a human-readable
// label. Pure companion of the matching surface, not part of scoring.
func CompetitionLevel(bidCount int) string {
	switch {
	case bidCount <= 0:
		return "No competition"
	case bidCount <= 3:
		return "Low"
	case bidCount <= 8:
		return "Medium"
	case bidCount <= 15:
		return "High"
	default:
		return "Very high"
	}
}
