package skills

import (
	"testing"

	"github.com/gigfair/matchengine/internal/marketplace"
)

func TestCompareGraduatedFactors(t *testing.T) {
	cases := []struct {
		required marketplace.Level
		actual   marketplace.Level
		want     float64
	}{
		{marketplace.LevelExpert, marketplace.LevelBeginner, FactorLagging},
		{marketplace.LevelIntermediate, marketplace.LevelBeginner, FactorNear},
		{marketplace.LevelBeginner, marketplace.LevelExpert, FactorMeets},
		{marketplace.LevelExpert, marketplace.LevelExpert, FactorMeets},
		{marketplace.LevelExpert, marketplace.LevelIntermediate, FactorNear},
		{marketplace.LevelBeginner, marketplace.LevelBeginner, FactorMeets},
	}

	for _, tc := range cases {
		if got := Compare(tc.required, tc.actual); got != tc.want {
			t.Errorf("Compare(%v, %v) = %v, want %v", tc.required, tc.actual, got, tc.want)
		}
	}
}

func TestCompareDefaultsUnknownLevels(t *testing.T) {
	// A zero level is unknown and must behave as intermediate.
	if got := Compare(marketplace.Level(0), marketplace.LevelIntermediate); got != FactorMeets {
		t.Errorf("unknown required level should default to intermediate, got %v", got)
	}
	if got := Compare(marketplace.LevelExpert, marketplace.Level(0)); got != FactorNear {
		t.Errorf("unknown actual level should default to intermediate, got %v", got)
	}
}

func TestAlignmentBands(t *testing.T) {
	cases := []struct {
		mean     float64
		required marketplace.Level
		want     float64
	}{
		{2.0, marketplace.LevelIntermediate, AlignmentFull},
		{2.4, marketplace.LevelIntermediate, AlignmentFull},
		{3.0, marketplace.LevelIntermediate, AlignmentPartial},
		{1.0, marketplace.LevelIntermediate, AlignmentPartial},
		{1.0, marketplace.LevelExpert, AlignmentWeak},
		{3.0, marketplace.LevelBeginner, AlignmentWeak},
	}

	for _, tc := range cases {
		if got := Alignment(tc.mean, tc.required); got != tc.want {
			t.Errorf("Alignment(%v, %v) = %v, want %v", tc.mean, tc.required, got, tc.want)
		}
	}
}

func TestMeanLevel(t *testing.T) {
	list := []marketplace.CandidateSkill{
		{Name: "a", Level: marketplace.LevelBeginner},
		{Name: "b", Level: marketplace.LevelExpert},
	}
	if got := MeanLevel(list); got != 2.0 {
		t.Errorf("expected mean 2.0, got %v", got)
	}

	if got := MeanLevel(nil); got != float64(marketplace.DefaultLevel) {
		t.Errorf("empty list should report the default tier, got %v", got)
	}
}
