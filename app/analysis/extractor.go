package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extract parses the line-oriented KEY: value protocol into a Judgment. It
// is total: keys may appear in any order or be missing entirely, and every
// absent or unparseable field yields its default.
//
// Recognized keys: SENTIMENT, <ASSET>_SENTIMENT, IMPACT, CONFIDENCE,
// ANALYSIS, KEY_LEVELS_<ASSET>, TRADE_RECOMMENDATION.
func Extract(response string, assets []string) Judgment {
	lines := strings.Split(response, "\n")

	judgment := Judgment{
		Impact:     ParseImpact(lookup(lines, "IMPACT")),
		Confidence: parseConfidence(lookup(lines, "CONFIDENCE")),
		Summary:    lookup(lines, "ANALYSIS"),
	}

	if rec := lookup(lines, "TRADE_RECOMMENDATION"); rec != "" {
		judgment.TradeRecommendation = rec
	}

	headline := lookup(lines, "SENTIMENT")

	for _, asset := range assets {
		key := strings.ToUpper(asset)

		if value := lookup(lines, key+"_SENTIMENT"); value != "" {
			if judgment.AssetSentiments == nil {
				judgment.AssetSentiments = make(map[string]Sentiment)
			}
			judgment.AssetSentiments[asset] = ParseSentiment(value)
			if headline == "" {
				headline = value
			}
		}

		if levels := lookup(lines, "KEY_LEVELS_"+key); levels != "" {
			if judgment.KeyLevels == nil {
				judgment.KeyLevels = make(map[string]string)
			}
			judgment.KeyLevels[asset] = levels
		}
	}

	judgment.Sentiment = ParseSentiment(headline)

	return judgment
}

// lookup finds the first line starting with "KEY:" and returns its trimmed
// value, or empty when the key is absent.
func lookup(lines []string, key string) string {
	prefix := key + ":"
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			_, value, _ := strings.Cut(strings.TrimSpace(line), ":")
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parseConfidence(value string) int {
	score, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return DefaultConfidence
	}
	return clampConfidence(score)
}

func clampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

type jsonJudgment struct {
	Sentiment           *string           `json:"sentiment"`
	AssetSentiments     map[string]string `json:"asset_sentiments"`
	Impact              *string           `json:"impact"`
	Confidence          *int              `json:"confidence"`
	Summary             *string           `json:"summary"`
	KeyLevels           map[string]string `json:"key_levels"`
	TradeRecommendation *string           `json:"trade_recommendation"`
}

// ExtractJSON parses a JSON envelope with the same semantic keys as the
// line protocol. Missing keys use the usual defaults, but a response that
// is not a JSON object at all is a contract violation and fails with
// ErrInvalidResponse.
func ExtractJSON(response string) (Judgment, error) {
	var raw jsonJudgment
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &raw); err != nil {
		return Judgment{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	judgment := Judgment{
		Sentiment:  SentimentNeutral,
		Impact:     ImpactLow,
		Confidence: DefaultConfidence,
	}

	if raw.Sentiment != nil {
		judgment.Sentiment = ParseSentiment(*raw.Sentiment)
	}
	if raw.Impact != nil {
		judgment.Impact = ParseImpact(*raw.Impact)
	}
	if raw.Confidence != nil {
		judgment.Confidence = clampConfidence(*raw.Confidence)
	}
	if raw.Summary != nil {
		judgment.Summary = strings.TrimSpace(*raw.Summary)
	}
	if raw.TradeRecommendation != nil {
		judgment.TradeRecommendation = strings.TrimSpace(*raw.TradeRecommendation)
	}

	if len(raw.AssetSentiments) > 0 {
		judgment.AssetSentiments = make(map[string]Sentiment, len(raw.AssetSentiments))
		for asset, value := range raw.AssetSentiments {
			judgment.AssetSentiments[asset] = ParseSentiment(value)
		}
	}
	if len(raw.KeyLevels) > 0 {
		judgment.KeyLevels = make(map[string]string, len(raw.KeyLevels))
		for asset, levels := range raw.KeyLevels {
			judgment.KeyLevels[asset] = strings.TrimSpace(levels)
		}
	}

	return judgment, nil
}
