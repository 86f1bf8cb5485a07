package insights

import (
	"fmt"
	"math"
	"sort"

	"nutrisnap/internal/catalog"
	"nutrisnap/internal/domain"
)

const (
	minReactions        = 3
	negativeFeeling     = 2
	negativeRateCutoff  = 0.6
	maxConfidence       = 95
	commonSymptomCount  = 2
	maxIntoleranceCount = 5
)

// IntoleranceFinding is a suspected food intolerance.
type IntoleranceFinding struct {
	Food           string   `json:"food"`
	Confidence     int      `json:"confidence"`
	Pattern        string   `json:"pattern"`
	Recommendation string   `json:"recommendation"`
	CommonSymptoms []string `json:"commonSymptoms"`
}

type reaction struct {
	feeling  int
	symptoms []string
}

// DetectIntolerances scores foods by how often eating them was followed by a
// negative feeling. Each (rated meal, detected food) pair counts once, so a
// bad meal implicates every food detected in it.
func DetectIntolerances(meals []domain.MealRecord) []IntoleranceFinding {
	var order []string
	reactions := make(map[string][]reaction)
	for _, m := range meals {
		if !m.Rated() {
			continue
		}
		for _, f := range m.DetectedFoods {
			if _, seen := reactions[f.Name]; !seen {
				order = append(order, f.Name)
			}
			reactions[f.Name] = append(reactions[f.Name], reaction{
				feeling:  *m.Feeling,
				symptoms: m.Symptoms,
			})
		}
	}

	findings := make([]IntoleranceFinding, 0)
	for _, food := range order {
		rs := reactions[food]
		if len(rs) < minReactions {
			continue
		}
		negative := 0
		for _, r := range rs {
			if r.feeling <= negativeFeeling {
				negative++
			}
		}
		rate := float64(negative) / float64(len(rs))
		if rate < negativeRateCutoff {
			continue
		}
		findings = append(findings, IntoleranceFinding{
			Food:           food,
			Confidence:     min(int(math.RoundToEven(rate*100)), maxConfidence),
			Pattern:        fmt.Sprintf("Negative symptoms %d/%d times", negative, len(rs)),
			Recommendation: catalog.IntoleranceAdvice(food),
			CommonSymptoms: commonSymptoms(rs),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Confidence > findings[j].Confidence
	})
	if len(findings) > maxIntoleranceCount {
		findings = findings[:maxIntoleranceCount]
	}
	return findings
}

// commonSymptoms returns symptoms reported at least twice, in first-seen order.
func commonSymptoms(rs []reaction) []string {
	var order []string
	counts := make(map[string]int)
	for _, r := range rs {
		for _, s := range r.symptoms {
			if counts[s] == 0 {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	out := make([]string, 0)
	for _, s := range order {
		if counts[s] >= commonSymptomCount {
			out = append(out, s)
		}
	}
	return out
}
