package agent

import (
	"strings"

	"marketpulse/internal/config"
)

const persona = `You are MarketPulse, an AI investment brief assistant for financial advisors.

Your role is to help advisors prepare for client meetings by discussing:
- Stocks and the wider market
- Risk considerations for client profiles
- Market calendar planning

Always be professional, concise, and focused on actionable insights.
`

var capabilityLines = map[string]string{
	config.ToolStockPrice:     "- get_stock_price: current price and daily change for a ticker.",
	config.ToolRiskScorer:     "- assess_client_suitability: suitability of a ticker for a conservative, moderate or aggressive client.",
	config.ToolMarketCalendar: "- check_market_holidays: public holidays that close markets in a country over the coming days.",
}

const noLiveData = "You cannot call tools or fetch live data. Never state a current price, " +
	"a suitability rating or a market closure as fact; say the advisor should check it with the service named below.\n"

// BuildSystemPrompt renders the persona and names the enabled services. The
// agent answers in a single model call, so the services are described as
// running elsewhere in the deployment, never as something it can invoke.
func BuildSystemPrompt(tools config.ToolConfig) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n")

	enabled := tools.Enabled()
	if len(enabled) == 0 {
		b.WriteString("You don't have access to live data tools yet.\n")
		b.WriteString("Provide general guidance based on your training data knowledge, and acknowledge\n")
		b.WriteString("that you'll have more capabilities as additional features are enabled.\n")
		return b.String()
	}

	b.WriteString(noLiveData)
	b.WriteString("\nThese services run as separate endpoints in this deployment and are not available from this assistant:\n")
	for _, name := range enabled {
		b.WriteString(capabilityLines[name])
		b.WriteString("\n")
	}
	b.WriteString("\nYou may point the advisor to these services. For anything else, say it is not available yet.\n")
	return b.String()
}
