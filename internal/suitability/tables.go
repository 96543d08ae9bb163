package suitability

import (
	"fmt"
	"strings"
)

// RiskProfile is the client's stated risk tolerance.
type RiskProfile uint8

const (
	Conservative RiskProfile = iota
	Moderate
	Aggressive
	numRiskProfiles
)

var riskProfileNames = [numRiskProfiles]string{
	Conservative: "conservative",
	Moderate:     "moderate",
	Aggressive:   "aggressive",
}

func (p RiskProfile) String() string {
	if p < numRiskProfiles {
		return riskProfileNames[p]
	}
	return fmt.Sprintf("RiskProfile(%d)", uint8(p))
}

func (p RiskProfile) MarshalText() ([]byte, error) {
	if p >= numRiskProfiles {
		return nil, fmt.Errorf("invalid risk profile %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// ParseRiskProfile accepts any casing and surrounding whitespace.
func ParseRiskProfile(s string) (RiskProfile, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p := RiskProfile(0); p < numRiskProfiles; p++ {
		if riskProfileNames[p] == s {
			return p, true
		}
	}
	return 0, false
}

// Volatility is a coarse risk bucket for a ticker. It is not a statistical measure.
type Volatility uint8

const (
	Low Volatility = iota
	Medium
	High
	numVolatilities
)

var volatilityNames = [numVolatilities]string{
	Low:    "low",
	Medium: "medium",
	High:   "high",
}

func (v Volatility) String() string {
	if v < numVolatilities {
		return volatilityNames[v]
	}
	return fmt.Sprintf("Volatility(%d)", uint8(v))
}

func (v Volatility) MarshalText() ([]byte, error) {
	if v >= numVolatilities {
		return nil, fmt.Errorf("invalid volatility %d", uint8(v))
	}
	return []byte(v.String()), nil
}

// Suitability is the advisory verdict label.
type Suitability string

const (
	ClearMatch         Suitability = "clear_match"
	ProceedWithCaution Suitability = "proceed_with_caution"
	NotSuitable        Suitability = "not_suitable"
)

// Verdict pairs a label with the explanation shown to the advisor.
type Verdict struct {
	Suitability Suitability
	Reasoning   string
}

// volatilityByTicker is reference data; tickers not listed are Medium.
var volatilityByTicker = map[string]Volatility{
	"AAPL":  Low,
	"MSFT":  Low,
	"BRK.B": Low,
	"JNJ":   Low,
	"V":     Low,
	"GOOGL": Medium,
	"AMZN":  Medium,
	"META":  Medium,
	"TSLA":  High,
	"NVDA":  High,
	"AMD":   High,
	"COIN":  High,
}

// VolatilityOf expects an already upper-cased ticker.
func VolatilityOf(ticker string) Volatility {
	if v, ok := volatilityByTicker[ticker]; ok {
		return v
	}
	return Medium
}

// conservative+high is the only hard block.
var matrix = [numRiskProfiles][numVolatilities]Verdict{
	Conservative: {
		Low: {ClearMatch, "Established company with stable earnings and low price volatility - " +
			"well aligned with conservative capital preservation goals."},
		Medium: {ProceedWithCaution, "Moderate volatility may cause drawdowns that exceed conservative risk " +
			"tolerance. Consider limiting position size."},
		High: {NotSuitable, "High price volatility is inappropriate for a conservative portfolio. " +
			"Capital preservation should be the priority for this client."},
	},
	Moderate: {
		Low:    {ClearMatch, "Stable investment provides a solid foundation for a balanced portfolio."},
		Medium: {ClearMatch, "Volatility aligns well with moderate risk tolerance and growth objectives."},
		High: {ProceedWithCaution, "Higher volatility than typical moderate allocation. Keep position size " +
			"proportionate to overall portfolio risk budget."},
	},
	Aggressive: {
		Low:    {ClearMatch, "Quality, stable company suitable as a defensive anchor in a growth portfolio."},
		Medium: {ClearMatch, "Good growth-oriented investment with manageable volatility for this risk profile."},
		High: {ClearMatch, "High growth potential is appropriate for an aggressive risk tolerance. " +
			"Ensure portfolio-level diversification is maintained."},
	},
}

// Lookup returns the matrix cell for a valid (profile, volatility) pair.
func Lookup(p RiskProfile, v Volatility) Verdict {
	return matrix[p][v]
}

func init() {
	for p := RiskProfile(0); p < numRiskProfiles; p++ {
		for v := Volatility(0); v < numVolatilities; v++ {
			if c := matrix[p][v]; c.Suitability == "" || c.Reasoning == "" {
				panic(fmt.Sprintf("suitability: matrix cell %s/%s is empty", p, v))
			}
		}
	}
}
