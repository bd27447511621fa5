package analysis

import (
	"errors"
	"strings"

	"github.com/lysyi3m/market-pulse/app/feed"
)

var (
	// ErrInvalidResponse indicates a provider promised structured output
	// and failed to deliver it
	ErrInvalidResponse = errors.New("invalid analysis response")

	// ErrMissingAPIKey indicates the analysis precondition is not met
	ErrMissingAPIKey = errors.New("analysis provider API key is required")
)

type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// ParseSentiment case-normalizes a sentiment value; anything outside the
// closed set yields neutral.
func ParseSentiment(value string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(value))) {
	case SentimentBullish:
		return SentimentBullish
	case SentimentBearish:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// ParseImpact validates an impact value; anything outside the closed set
// yields low.
func ParseImpact(value string) Impact {
	switch Impact(strings.ToLower(strings.TrimSpace(value))) {
	case ImpactHigh:
		return ImpactHigh
	case ImpactMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// DefaultConfidence is substituted for a missing or unparseable confidence
const DefaultConfidence = 50

// Judgment is the structured verdict extracted from one provider response.
// Every field holds a safe default when the response was ambiguous.
type Judgment struct {
	Sentiment           Sentiment            `json:"sentiment"`
	AssetSentiments     map[string]Sentiment `json:"asset_sentiments,omitempty"`
	Impact              Impact               `json:"impact"`
	Confidence          int                  `json:"confidence"`
	Summary             string               `json:"summary,omitempty"`
	KeyLevels           map[string]string    `json:"key_levels,omitempty"`
	TradeRecommendation string               `json:"trade_recommendation,omitempty"`
}

// SentimentFor returns the judgment's sentiment for a tracked asset,
// falling back to the headline sentiment when no per-asset value was given.
func (j Judgment) SentimentFor(asset string) Sentiment {
	if s, ok := j.AssetSentiments[asset]; ok {
		return s
	}
	if j.Sentiment == "" {
		return SentimentNeutral
	}
	return j.Sentiment
}

// AnalyzedItem is a feed item merged with its judgment. Created once per
// analysis; re-analysis produces a new value.
type AnalyzedItem struct {
	feed.Item
	Judgment Judgment `json:"judgment"`
	Analyzed bool     `json:"analyzed"`
}
