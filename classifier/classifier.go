// Package classifier decides which business niche a business belongs to by
// keyword overlap against a taxonomy. Classification is deterministic and
// never fails: with no signal it falls back to the general type.
package classifier

import (
	"log/slog"
	"math"
	"strings"

	"github.com/use-agent/sitescan/models"
)

// Keyword weights.
const (
	primaryWeight   = 10
	secondaryWeight = 3
	indicatorWeight = 5

	maxMatchedKeywords = 5
)

const noMatchWarning = "Could not classify business type"

// Classifier scores text against a fixed taxonomy. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	categories []Category
	display    map[string]string
}

// New creates a Classifier over the given categories. Keywords are
// lower-cased; declaration order is kept for tie-breaking.
func New(categories []Category) *Classifier {
	c := &Classifier{
		categories: make([]Category, len(categories)),
		display:    make(map[string]string, len(categories)),
	}
	for i, cat := range categories {
		cat = cat.clone()
		lowerAll(cat.Primary)
		lowerAll(cat.Secondary)
		lowerAll(cat.Indicators)
		for _, t := range cat.Tags {
			lowerAll(t.Keywords)
		}
		c.categories[i] = cat
		if cat.Display != "" {
			c.display[cat.Name] = cat.Display
		}
	}
	return c
}

// Default creates a Classifier over the built-in taxonomy.
func Default() *Classifier {
	return New(DefaultTaxonomy())
}

// Classify picks the best-matching category for the given inputs.
func (c *Classifier) Classify(category, name, text string) models.ClassificationResult {
	search := strings.ToLower(category + " " + name + " " + text)
	withText := strings.TrimSpace(text) != ""

	best := -1
	bestScore := 0
	var bestMatched []string
	for i := range c.categories {
		score, matched := c.categories[i].score(search, withText)
		if score > bestScore {
			best, bestScore, bestMatched = i, score, matched
		}
	}

	if best < 0 {
		slog.Debug("no category match", "category", category, "name", name)
		return models.ClassificationResult{
			PrimaryType:     models.GeneralType,
			Confidence:      0,
			SecondaryTags:   []string{},
			MatchedKeywords: []string{},
			Warning:         noMatchWarning,
		}
	}

	winner := c.categories[best]
	if bestMatched == nil {
		bestMatched = []string{}
	}
	if len(bestMatched) > maxMatchedKeywords {
		bestMatched = bestMatched[:maxMatchedKeywords]
	}
	result := models.ClassificationResult{
		PrimaryType:     winner.Name,
		Confidence:      Confidence(bestScore),
		SecondaryTags:   winner.tagsFor(search),
		MatchedKeywords: bestMatched,
	}
	slog.Debug("business classified",
		"type", result.PrimaryType,
		"score", bestScore,
		"confidence", result.Confidence,
	)
	return result
}

// Confidence maps a match score onto [0, 1], rounded to two decimals.
// The curve jumps at 10, 20 and 30; the bands are kept exactly as tuned.
func Confidence(score int) float64 {
	s := float64(score)
	var c float64
	switch {
	case score >= 30:
		c = math.Min(0.95, 0.70+(s-30)*0.01)
	case score >= 20:
		c = 0.70 + (s-20)*0.02
	case score >= 10:
		c = 0.50 + (s-10)*0.02
	case score > 0:
		c = s * 0.05
	default:
		c = 0
	}
	return math.Round(c*100) / 100
}

// Types lists the taxonomy's business types in declaration order.
func (c *Classifier) Types() []string {
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Name
	}
	return out
}

// Keywords returns the primary and secondary keywords of a type, or nils
// when the type is unknown.
func (c *Classifier) Keywords(businessType string) (primary, secondary []string) {
	for _, cat := range c.categories {
		if cat.Name == businessType {
			return append([]string(nil), cat.Primary...), append([]string(nil), cat.Secondary...)
		}
	}
	return nil, nil
}

// DisplayName returns the human label of a type known to this classifier.
func (c *Classifier) DisplayName(businessType string) string {
	if d, ok := c.display[businessType]; ok {
		return d
	}
	return DisplayName(businessType)
}

// DisplayName returns the human label of a built-in type; unknown types are
// title-cased with underscores turned into spaces.
func DisplayName(businessType string) string {
	if d, ok := displayNames[businessType]; ok {
		return d
	}
	words := strings.Fields(strings.ReplaceAll(businessType, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func (cat *Category) score(search string, withText bool) (int, []string) {
	score := 0
	var matched []string
	for _, kw := range cat.Primary {
		if strings.Contains(search, kw) {
			score += primaryWeight
			matched = append(matched, kw)
		}
	}
	for _, kw := range cat.Secondary {
		if strings.Contains(search, kw) {
			score += secondaryWeight
			matched = append(matched, kw)
		}
	}
	if withText {
		for _, kw := range cat.Indicators {
			if strings.Contains(search, kw) {
				score += indicatorWeight
			}
		}
	}
	return score, matched
}

func (cat *Category) tagsFor(search string) []string {
	tags := []string{}
	seen := make(map[string]bool, len(cat.Tags))
	for _, t := range cat.Tags {
		if seen[t.Name] {
			continue
		}
		for _, kw := range t.Keywords {
			if strings.Contains(search, kw) {
				tags = append(tags, t.Name)
				seen[t.Name] = true
				break
			}
		}
	}
	return tags
}

func lowerAll(words []string) {
	for i, w := range words {
		words[i] = strings.ToLower(strings.TrimSpace(w))
	}
}
