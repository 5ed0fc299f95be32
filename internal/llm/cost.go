package llm

import "strings"

// pricePerMillion holds USD cost per million tokens, (input, output),
// for cost tracking on chat responses. Unknown models fall back to a
// conservative default rather than erroring — cost tracking is advisory.
var pricePerMillion = map[string][2]float64{
	"gpt-4":                  {30.00, 60.00},
	"gpt-4-turbo":            {10.00, 30.00},
	"gpt-4o":                 {5.00, 15.00},
	"gpt-4o-mini":            {0.15, 0.60},
	"gpt-3.5-turbo":          {0.50, 1.50},
	"text-embedding-ada-002": {0.10, 0},
	"text-embedding-3-small": {0.02, 0},
	"text-embedding-3-large": {0.13, 0},
	"claude-3-opus-20240229": {15.00, 75.00},
	"claude-3-sonnet-20240229": {3.00, 15.00},
	"claude-3-haiku-20240307":  {0.25, 1.25},
	"claude-sonnet-4-20250514": {3.00, 15.00},
	"claude-opus-4-20250514":   {15.00, 75.00},
}

const defaultInputPricePerMillion = 1.00
const defaultOutputPricePerMillion = 2.00

func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	prices, ok := pricePerMillion[strings.ToLower(model)]
	if !ok {
		prices = [2]float64{defaultInputPricePerMillion, defaultOutputPricePerMillion}
	}
	return float64(inputTokens)/1_000_000*prices[0] + float64(outputTokens)/1_000_000*prices[1]
}
