package sentiment

import (
	"math"
	"strings"
	"time"

	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/config"
)

// AssetSentiment is the aggregated market signal for one tracked asset,
// recomputed in full on every aggregation call.
type AssetSentiment struct {
	Asset      string             `json:"asset"`
	Sentiment  analysis.Sentiment `json:"sentiment"`
	Confidence int                `json:"confidence"`
	KeyFactors []string           `json:"key_factors"`
	ComputedAt time.Time          `json:"computed_at"`
}

// decayHorizon is the age at which an item's influence reaches zero
const decayHorizon = 24 * time.Hour

func impactWeight(impact analysis.Impact) float64 {
	switch impact {
	case analysis.ImpactHigh:
		return 1.0
	case analysis.ImpactMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Aggregate combines per-item judgments into a per-asset signal using
// linear recency decay and impact weighting. It is a pure function of its
// inputs and now; it holds no state and tolerates overlapping item sets.
func Aggregate(items []analysis.AnalyzedItem, asset config.Asset, now time.Time) AssetSentiment {
	relevant := filterRelevant(items, asset)

	return AssetSentiment{
		Asset:      asset.Code,
		Sentiment:  dominantSentiment(relevant, asset.Code, now),
		Confidence: confidence(relevant, asset.Code, now),
		KeyFactors: keyFactors(relevant),
		ComputedAt: now,
	}
}

// filterRelevant retains items whose title or description contains at least
// one of the asset's keywords, case-insensitively.
func filterRelevant(items []analysis.AnalyzedItem, asset config.Asset) []analysis.AnalyzedItem {
	relevant := make([]analysis.AnalyzedItem, 0, len(items))
	for _, item := range items {
		content := strings.ToLower(item.Title + " " + item.Description)
		for _, keyword := range asset.Keywords {
			if strings.Contains(content, strings.ToLower(keyword)) {
				relevant = append(relevant, item)
				break
			}
		}
	}
	return relevant
}

// timeWeight decays linearly from 1 to 0 over the decay horizon; items at
// or beyond the horizon contribute nothing.
func timeWeight(publishedAt, now time.Time) float64 {
	hours := now.Sub(publishedAt).Hours()
	return math.Max(0, 1-hours/decayHorizon.Hours())
}

func itemWeight(item analysis.AnalyzedItem, now time.Time) float64 {
	return timeWeight(item.PublishedAt, now) * impactWeight(item.Judgment.Impact)
}

// dominantSentiment picks the class with the largest weight share. Ties
// break deterministically in the order bullish > bearish > neutral.
func dominantSentiment(items []analysis.AnalyzedItem, asset string, now time.Time) analysis.Sentiment {
	if len(items) == 0 {
		return analysis.SentimentNeutral
	}

	scores := map[analysis.Sentiment]float64{}
	total := 0.0
	for _, item := range items {
		weight := itemWeight(item, now)
		scores[item.Judgment.SentimentFor(asset)] += weight
		total += weight
	}

	if total == 0 {
		return analysis.SentimentNeutral
	}

	order := []analysis.Sentiment{analysis.SentimentBullish, analysis.SentimentBearish, analysis.SentimentNeutral}
	dominant := analysis.SentimentNeutral
	best := -1.0
	for _, sentiment := range order {
		if score := scores[sentiment] / total; score > best {
			best = score
			dominant = sentiment
		}
	}

	return dominant
}

// confidence blends agreement with the dominant class and a bonus for
// recent high-impact corroboration, capped at 100.
func confidence(items []analysis.AnalyzedItem, asset string, now time.Time) int {
	if len(items) == 0 {
		return 0
	}

	dominant := dominantSentiment(items, asset, now)

	agreeing := 0
	recentHighImpact := 0
	for _, item := range items {
		if item.Judgment.SentimentFor(asset) == dominant {
			agreeing++
		}
		if item.Judgment.Impact == analysis.ImpactHigh && now.Sub(item.PublishedAt) <= decayHorizon {
			recentHighImpact++
		}
	}

	agreementScore := float64(agreeing) / float64(len(items))
	recentHighImpactBonus := 0.1 * float64(recentHighImpact)

	score := int(math.Round(agreementScore*100 + recentHighImpactBonus*100))
	if score > 100 {
		score = 100
	}
	return score
}

// keyFactors returns the titles of up to 3 retained items with high or
// medium impact, in their original order.
func keyFactors(items []analysis.AnalyzedItem) []string {
	factors := make([]string, 0, 3)
	for _, item := range items {
		if item.Judgment.Impact != analysis.ImpactHigh && item.Judgment.Impact != analysis.ImpactMedium {
			continue
		}
		factors = append(factors, item.Title)
		if len(factors) == 3 {
			break
		}
	}
	return factors
}
