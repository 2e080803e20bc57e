package skills

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/gigfair/matchengine/internal/marketplace"
)

// Normalize canonicalizes heterogeneous skill payloads into a uniform list.
// Profiles arrive with skills as bare name lists, name+level pairs, maps or
// JSON-encoded blobs of any of those. Unrecognized shapes degrade to an
// empty list: absent skill data is expected on new profiles and must never
// fail a scoring request.
func Normalize(raw any) []marketplace.CandidateSkill {
	switch v := raw.(type) {
	case nil:
		return nil
	case []marketplace.CandidateSkill:
		return normalizeTyped(v)
	case []string:
		return normalizeNames(v)
	case string:
		return normalizeBlob(v)
	case []any:
		return normalizeMixed(v)
	case json.RawMessage:
		return normalizeBlob(string(v))
	default:
		return nil
	}
}

func normalizeTyped(items []marketplace.CandidateSkill) []marketplace.CandidateSkill {
	skills := make([]marketplace.CandidateSkill, 0, len(items))
	for _, item := range items {
		if skill, ok := canonical(item.Name, item.Level); ok {
			skills = append(skills, skill)
		}
	}
	return skills
}

func normalizeNames(names []string) []marketplace.CandidateSkill {
	skills := make([]marketplace.CandidateSkill, 0, len(names))
	for _, name := range names {
		if skill, ok := canonical(name, 0); ok {
			skills = append(skills, skill)
		}
	}
	return skills
}

func normalizeBlob(blob string) []marketplace.CandidateSkill {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil
	}

	if strings.HasPrefix(blob, "[") || strings.HasPrefix(blob, "{") {
		var items []any
		if err := json.Unmarshal([]byte(blob), &items); err != nil {
			return nil
		}
		return normalizeMixed(items)
	}

	// A plain comma-separated list is the last shape seen in the wild.
	return normalizeNames(strings.Split(blob, ","))
}

func normalizeMixed(items []any) []marketplace.CandidateSkill {
	skills := make([]marketplace.CandidateSkill, 0, len(items))
	for _, item := range items {
		switch entry := item.(type) {
		case string:
			if skill, ok := canonical(entry, 0); ok {
				skills = append(skills, skill)
			}
		case map[string]any:
			if skill, ok := decodePair(entry); ok {
				skills = append(skills, skill)
			}
		}
	}
	return skills
}

// skillPair is the loose name+level shape decoded from map payloads.
type skillPair struct {
	Name  string `mapstructure:"name"`
	Level any    `mapstructure:"experience_level"`
}

func decodePair(entry map[string]any) (marketplace.CandidateSkill, bool) {
	var pair skillPair

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &pair,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return marketplace.CandidateSkill{}, false
	}
	if err := decoder.Decode(entry); err != nil {
		return marketplace.CandidateSkill{}, false
	}

	level := marketplace.DefaultLevel
	if pair.Level != nil {
		level = marketplace.ParseLevel(pair.Level)
	}

	return canonical(pair.Name, level)
}

func canonical(name string, level marketplace.Level) (marketplace.CandidateSkill, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return marketplace.CandidateSkill{}, false
	}
	if level < marketplace.LevelBeginner || level > marketplace.LevelExpert {
		level = marketplace.DefaultLevel
	}
	return marketplace.CandidateSkill{Name: name, Level: level}, true
}
