package analysis

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/market-pulse/app/feed"
)

const systemPrompt = "You are a professional forex market analyst."

// Preset prompt bodies selectable via configuration
var promptPresets = map[string]string{
	"general": `As an expert financial analyst specializing in forex and precious metals markets, analyze this news with extreme precision.

Consider these critical aspects:

1. Central Bank Policy Impact (40% weight):
   - Direct monetary policy implications
   - Forward guidance signals
   - Interest rate trajectory indicators

2. Economic Data Impact (30% weight):
   - Inflation metrics
   - Employment data
   - GDP implications

3. Commodity Market Dynamics (30% weight):
   - Safe-haven demand drivers
   - Physical market conditions
   - Technical levels

4. Risk Assessment:
   - Market positioning
   - Volatility expectations
   - Geopolitical factors`,

	"technical": `Analyze this forex news from a technical perspective:
1. Identify potential support and resistance levels
2. Assess the impact on current trends
3. Outline the most probable price moves
4. Detail a trading opportunity with pair, direction and justification`,

	"fundamental": `Perform a deep fundamental analysis:
1. Examine the impact on economic factors
2. Assess the implications for monetary policy
3. Evaluate the longer-term consequences
4. Present a trading opportunity grounded in the key fundamental drivers`,
}

// PromptBuilder renders the per-item analysis prompt, including the strict
// KEY: value answer protocol the extractor expects.
type PromptBuilder struct {
	assets []string
	body   string
}

// NewPromptBuilder selects the preset body, or uses customPrompt verbatim
// when provided.
func NewPromptBuilder(assets []string, preset string, customPrompt string) *PromptBuilder {
	body := customPrompt
	if body == "" {
		var ok bool
		body, ok = promptPresets[preset]
		if !ok {
			body = promptPresets["general"]
		}
	}

	return &PromptBuilder{
		assets: assets,
		body:   body,
	}
}

func (b *PromptBuilder) Run(item feed.Item, articleContent string) string {
	var sb strings.Builder

	sb.WriteString(b.body)
	sb.WriteString("\n\nAnalyze this news article:\n")
	fmt.Fprintf(&sb, "Title: %s\n", item.Title)
	fmt.Fprintf(&sb, "Description: %s\n", item.Description)

	if articleContent != "" {
		fmt.Fprintf(&sb, "\nFull article:\n%s\n", articleContent)
	}

	sb.WriteString("\nProvide your analysis in this exact format:\n\n")
	for _, asset := range b.assets {
		fmt.Fprintf(&sb, "%s_SENTIMENT: [bullish/bearish/neutral]\n", strings.ToUpper(asset))
	}
	sb.WriteString("IMPACT: [high/medium/low]\n")
	sb.WriteString("CONFIDENCE: [0-100]\n")
	sb.WriteString("ANALYSIS: [Precise 2-sentence analysis focusing on key market-moving factors]\n")
	for _, asset := range b.assets {
		fmt.Fprintf(&sb, "KEY_LEVELS_%s: [Support and resistance levels if mentioned]\n", strings.ToUpper(asset))
	}
	sb.WriteString("TRADE_RECOMMENDATION: [Specific trade idea if confidence > 80]")

	return sb.String()
}
