package skills

import "github.com/gigfair/matchengine/internal/marketplace"

// Graduated factors for comparing a candidate's tier against a requirement.
// One tier below the requirement is still workable; two or more is a long
// shot but never a hard zero.
const (
	FactorMeets   = 1.0
	FactorNear    = 0.6
	FactorLagging = 0.2
)

// Distance bands for the averaged level-alignment score used by legacy jobs
// that declare a single required level instead of per-skill tiers.
const (
	alignmentClose = 0.5
	alignmentNear  = 1.5

	AlignmentFull    = 1.0
	AlignmentPartial = 0.7
	AlignmentWeak    = 0.3
)

// Compare returns the graduated match factor of an actual experience tier
// against the required one.
func Compare(required, actual marketplace.Level) float64 {
	required = marketplace.ParseLevel(required)
	actual = marketplace.ParseLevel(actual)

	switch {
	case actual >= required:
		return FactorMeets
	case actual == required-1:
		return FactorNear
	default:
		return FactorLagging
	}
}

// Alignment scores the mean of a candidate's skill tiers against a job's
// single required tier using distance bands.
func Alignment(candidateMean float64, required marketplace.Level) float64 {
	required = marketplace.ParseLevel(required)

	distance := candidateMean - float64(required)
	if distance < 0 {
		distance = -distance
	}

	switch {
	case distance < alignmentClose:
		return AlignmentFull
	case distance < alignmentNear:
		return AlignmentPartial
	default:
		return AlignmentWeak
	}
}

// MeanLevel averages the tiers of a normalized skill list. An empty list
// reports the default tier so alignment stays defined for thin profiles.
func MeanLevel(list []marketplace.CandidateSkill) float64 {
	if len(list) == 0 {
		return float64(marketplace.DefaultLevel)
	}

	total := 0
	for _, skill := range list {
		total += int(skill.Level)
	}
	return float64(total) / float64(len(list))
}
