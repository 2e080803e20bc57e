package match

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gigfair/matchengine/internal/marketplace"
	"github.com/gigfair/matchengine/internal/skills"
)

// Scoring weights. The structured strategy splits the 100-point scale into a
// required-skill component and a preferred-skill bonus. The legacy strategy
// (flat skill-name lists, no per-skill tiers) weighs direct matches against
// overall experience alignment instead.
const (
	requiredWeight  = 70.0
	preferredWeight = 30.0

	legacyDirectWeight     = 0.6
	legacyExperienceWeight = 0.4
	// Partial (fuzzy) matches earn at most half of the direct-match ceiling.
	legacyPartialShare = 0.5
	// Skills beyond the posting's list earn a small bonus, capped so a long
	// tail of unrelated skills cannot dominate.
	legacyExtraSkillStep  = 0.05
	legacyExtraSkillBonus = 0.2

	// Incomplete profiles score a minimal floor instead of zero so they are
	// ranked below complete ones but never fully excluded.
	emptyProfileFloor = 15

	maxSuggestedSkills = 3
)

// DeterministicScorer computes compatibility scores from skill sets and
// experience tiers. It is pure computation over normalized data and always
// returns a result; a score of zero is legitimate, an error is not.
type DeterministicScorer struct {
	logger *zap.Logger
}

func NewDeterministicScorer(logger *zap.Logger) *DeterministicScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeterministicScorer{logger: logger}
}

// Score produces a deterministic match result for the pair. The structured
// strategy applies when the job carries per-skill requirements, the legacy
// strategy otherwise.
func (s *DeterministicScorer) Score(job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) *Result {
	candidateSkills := skills.Normalize(candidate.Skills)

	var score int
	var reason string
	if job.Structured() {
		score, reason = s.scoreStructured(job.Requirements, candidateSkills)
	} else {
		score, reason = s.scoreLegacy(job, candidateSkills)
	}

	s.logger.Debug("deterministic score computed",
		zap.String("job_id", job.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("score", score),
		zap.Bool("structured", job.Structured()),
	)

	return &Result{
		JobID:       job.ID,
		CandidateID: candidate.ID,
		Score:       score,
		Reason:      reason,
		Source:      SourceDeterministic,
		ComputedAt:  time.Now().UTC(),
	}
}

// scoreStructured awards up to 70 points for required skills and up to 30
// for preferred ones. Each matched skill contributes its experience factor,
// so a candidate one tier below the requirement still earns partial credit.
// A posting with no preferred skills gets the full 30 as a neutral bonus.
func (s *DeterministicScorer) scoreStructured(requirements []marketplace.SkillRequirement, candidateSkills []marketplace.CandidateSkill) (int, string) {
	var required, preferred []marketplace.SkillRequirement
	for _, req := range requirements {
		if req.Importance == marketplace.ImportancePreferred {
			preferred = append(preferred, req)
		} else {
			required = append(required, req)
		}
	}

	requiredPoints, requiredMatched, missing := matchRequirements(required, candidateSkills)
	preferredPoints, preferredMatched, _ := matchRequirements(preferred, candidateSkills)

	requiredSub := requiredWeight
	if len(required) > 0 {
		requiredSub = requiredPoints / float64(len(required)) * requiredWeight
	}

	preferredSub := preferredWeight
	if len(preferred) > 0 {
		preferredSub = preferredPoints / float64(len(preferred)) * preferredWeight
	}

	score := clampScore(int(math.Round(requiredSub + preferredSub)))

	var b strings.Builder
	if len(required) > 0 {
		fmt.Fprintf(&b, "Matches %d of %d required skills.", requiredMatched, len(required))
	} else {
		b.WriteString("No required skills declared.")
	}
	if len(preferred) > 0 && preferredMatched > 0 {
		fmt.Fprintf(&b, " Matches %d of %d preferred skills.", preferredMatched, len(preferred))
	}
	appendSuggestions(&b, missing)

	return score, b.String()
}

// matchRequirements resolves each requirement against the candidate's skills
// by exact case-insensitive name match and accumulates graduated experience
// factors. The returned points, the integer match count and the names of
// unmatched requirements all come from the same pass so score and reason
// can never disagree.
func matchRequirements(requirements []marketplace.SkillRequirement, candidateSkills []marketplace.CandidateSkill) (points float64, matched int, missing []string) {
	for _, req := range requirements {
		skill, ok := findSkill(candidateSkills, req.Name)
		if !ok {
			missing = append(missing, req.Name)
			continue
		}
		points += skills.Compare(req.Level, skill.Level)
		matched++
	}
	return points, matched, missing
}

func findSkill(list []marketplace.CandidateSkill, name string) (marketplace.CandidateSkill, bool) {
	for _, skill := range list {
		if strings.EqualFold(skill.Name, name) {
			return skill, true
		}
	}
	return marketplace.CandidateSkill{}, false
}

// scoreLegacy handles postings that only list flat skill names. Direct
// matches are weighted by the candidate's per-skill experience, fuzzy
// partial matches earn a reduced bonus, and the posting's single experience
// tier is compared against the candidate's average.
func (s *DeterministicScorer) scoreLegacy(job *marketplace.JobProfile, candidateSkills []marketplace.CandidateSkill) (int, string) {
	jobSkills := job.KeySkills

	if len(jobSkills) == 0 && len(candidateSkills) == 0 {
		return emptyProfileFloor, "Not enough skill data to compare yet."
	}

	if len(candidateSkills) == 0 {
		return emptyProfileFloor, fmt.Sprintf(
			"Profile lists no skills yet; the job asks for %d. Complete the profile to improve matching.", len(jobSkills))
	}

	if len(jobSkills) == 0 {
		// Nothing to compare against: rank purely on experience alignment.
		alignment := skills.Alignment(skills.MeanLevel(candidateSkills), job.Experience)
		score := clampScore(int(math.Round((legacyDirectWeight + alignment*legacyExperienceWeight) * 100)))
		return score, "Job lists no skills; ranked by experience level only."
	}

	var directWeightSum float64
	directMatched := 0
	var unmatched []string
	for _, name := range jobSkills {
		skill, ok := findSkill(candidateSkills, name)
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		directWeightSum += skill.Level.Weight()
		directMatched++
	}

	// Normalize against the expert-weight ceiling so the ratio stays in [0,1].
	directRatio := directWeightSum / (float64(len(jobSkills)) * marketplace.LevelExpert.Weight())

	partialMatched := 0
	for _, name := range unmatched {
		if hasPartialMatch(name, candidateSkills) {
			partialMatched++
		}
	}
	partialRatio := float64(partialMatched) / float64(len(jobSkills))

	alignment := skills.Alignment(skills.MeanLevel(candidateSkills), job.Experience)

	total := directRatio*legacyDirectWeight +
		partialRatio*legacyDirectWeight*legacyPartialShare +
		alignment*legacyExperienceWeight

	extras := len(candidateSkills) - directMatched
	if extras > 0 {
		bonus := float64(extras) * legacyExtraSkillStep
		if bonus > legacyExtraSkillBonus {
			bonus = legacyExtraSkillBonus
		}
		total += bonus
	}

	score := clampScore(int(math.Round(total * 100)))
	if score < emptyProfileFloor {
		score = emptyProfileFloor
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Matches %d of %d listed skills.", directMatched, len(jobSkills))
	if partialMatched > 0 {
		fmt.Fprintf(&b, " Found %d related skills.", partialMatched)
	}
	switch alignment {
	case skills.AlignmentFull:
		b.WriteString(" Experience level fits the posting.")
	case skills.AlignmentPartial:
		b.WriteString(" Experience level is close to the posting.")
	default:
		b.WriteString(" Experience level differs from the posting.")
	}
	appendSuggestions(&b, missingAfterPartial(unmatched, candidateSkills))

	return score, b.String()
}

// hasPartialMatch reconciles a job skill name against the candidate list via
// substring containment, taxonomy equivalence and edit-distance similarity,
// in that order of cost.
func hasPartialMatch(name string, candidateSkills []marketplace.CandidateSkill) bool {
	for _, skill := range candidateSkills {
		if PartialSkillMatch(name, skill.Name) {
			return true
		}
		if CategoriesEquivalent(name, skill.Name) {
			return true
		}
		if FuzzyEqual(name, skill.Name) {
			return true
		}
	}
	return false
}

func missingAfterPartial(unmatched []string, candidateSkills []marketplace.CandidateSkill) []string {
	var missing []string
	for _, name := range unmatched {
		if !hasPartialMatch(name, candidateSkills) {
			missing = append(missing, name)
		}
	}
	return missing
}

// appendSuggestions names up to three missing skills as a learning hint.
func appendSuggestions(b *strings.Builder, missing []string) {
	if len(missing) == 0 {
		return
	}
	if len(missing) > maxSuggestedSkills {
		missing = missing[:maxSuggestedSkills]
	}
	fmt.Fprintf(b, " Consider learning: %s.", strings.Join(missing, ", "))
}
