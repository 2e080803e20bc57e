package skills

import (
	"testing"

	"github.com/gigfair/matchengine/internal/marketplace"
)

func TestNormalizeBareNames(t *testing.T) {
	got := Normalize([]string{" PHP ", "Vue", ""})

	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d: %v", len(got), got)
	}
	if got[0].Name != "PHP" {
		t.Errorf("expected trimmed name PHP, got %q", got[0].Name)
	}
	if got[0].Level != marketplace.LevelIntermediate {
		t.Errorf("expected default intermediate level, got %v", got[0].Level)
	}
}

func TestNormalizePairs(t *testing.T) {
	raw := []any{
		map[string]any{"name": "Go", "experience_level": "expert"},
		map[string]any{"name": "Docker"},
		map[string]any{"experience_level": "expert"},
		42,
	}

	got := Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d: %v", len(got), got)
	}
	if got[0].Name != "Go" || got[0].Level != marketplace.LevelExpert {
		t.Errorf("unexpected first skill: %+v", got[0])
	}
	if got[1].Level != marketplace.LevelIntermediate {
		t.Errorf("missing level should default to intermediate, got %v", got[1].Level)
	}
}

func TestNormalizeJSONBlob(t *testing.T) {
	blob := `[{"name": "PHP", "experience_level": "beginner"}, "Laravel"]`

	got := Normalize(blob)
	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d: %v", len(got), got)
	}
	if got[0].Level != marketplace.LevelBeginner {
		t.Errorf("expected beginner, got %v", got[0].Level)
	}
	if got[1].Name != "Laravel" {
		t.Errorf("expected Laravel, got %q", got[1].Name)
	}
}

func TestNormalizeCommaSeparatedBlob(t *testing.T) {
	got := Normalize("php, laravel, mysql")
	if len(got) != 3 {
		t.Fatalf("expected 3 skills, got %d: %v", len(got), got)
	}
}

func TestNormalizeMalformedDegradesToEmpty(t *testing.T) {
	cases := map[string]any{
		"nil":          nil,
		"number":       42,
		"empty string": "   ",
		"object blob":  `{"not": "a list"`,
		"bool":         true,
	}

	for name, raw := range cases {
		if got := Normalize(raw); len(got) != 0 {
			t.Errorf("%s: expected empty list, got %v", name, got)
		}
	}
}

func TestNormalizeNumericLevels(t *testing.T) {
	got := Normalize([]any{
		map[string]any{"name": "PHP", "experience_level": 3},
		map[string]any{"name": "SQL", "experience_level": "7"},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(got))
	}
	if got[0].Level != marketplace.LevelExpert {
		t.Errorf("numeric 3 should parse as expert, got %v", got[0].Level)
	}
	if got[1].Level != marketplace.LevelIntermediate {
		t.Errorf("out-of-range level should default to intermediate, got %v", got[1].Level)
	}
}
