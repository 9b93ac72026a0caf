// Package related ranks notes by how closely they relate to a target note.
package related

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/dossier/internal/models"
)

// DefaultLimit is used when a non-positive limit is requested.
const DefaultLimit = 5

// Weights of the scoring formula. The 3:2:1 ratio keeps rankings stable.
const (
	sharedTagWeight     = 3.0
	categoryMatchWeight = 2.0
	recencyWindowDays   = 365.0
)

// Target describes the note related notes are computed for.
type Target struct {
	Slug     string
	Tags     []string
	Category string
}

// TargetOf builds a Target from a note.
func TargetOf(n models.Note) Target {
	return Target{Slug: n.Slug, Tags: n.Tags, Category: n.Category}
}

// Scored is a candidate together with its score breakdown.
type Scored struct {
	Note       models.Note `json:"note"`
	Score      float64     `json:"score"`
	SharedTags int         `json:"sharedTags"`
}

// Score computes the relatedness of candidate to target at time now.
func Score(target Target, candidate models.Note, now time.Time) Scored {
	shared := sharedTagCount(target.Tags, candidate.Tags)
	score := sharedTagWeight * float64(shared)
	if target.Category != "" && strings.EqualFold(target.Category, candidate.Category) {
		score += categoryMatchWeight
	}
	score += recencyBonus(candidate.LastModified, now)
	return Scored{Note: candidate, Score: score, SharedTags: shared}
}

// RankScored scores every candidate except the target itself and returns the
// best limit entries. Unrelated candidates score zero and sort last.
func RankScored(target Target, candidates []models.Note, limit int, now time.Time) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Slug == target.Slug {
			continue
		}
		scored = append(scored, Score(target, c, now))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SharedTags != b.SharedTags {
			return a.SharedTags > b.SharedTags
		}
		if !a.Note.LastModified.Equal(b.Note.LastModified) {
			return a.Note.LastModified.After(b.Note.LastModified)
		}
		return a.Note.Slug < b.Note.Slug
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Rank returns the notes most related to target, best first.
func Rank(target Target, candidates []models.Note, limit int, now time.Time) []models.Note {
	scored := RankScored(target, candidates, limit, now)
	out := make([]models.Note, len(scored))
	for i, s := range scored {
		out[i] = s.Note
	}
	return out
}

// recencyBonus decays linearly from 1 to 0 over one year. Future dates count
// as brand new.
func recencyBonus(modified, now time.Time) float64 {
	if modified.IsZero() {
		return 0
	}
	ageDays := now.Sub(modified).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return max(0, 1-min(1, ageDays/recencyWindowDays))
}

func sharedTagCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[strings.ToLower(t)] = struct{}{}
	}
	n := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		k := strings.ToLower(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := set[k]; ok {
			n++
		}
	}
	return n
}
