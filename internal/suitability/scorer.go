package suitability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Assessment is the scorer's answer for one (ticker, risk profile) pair.
type Assessment struct {
	Ticker             string      `json:"ticker"`
	RiskProfile        RiskProfile `json:"risk_profile"`
	Suitability        Suitability `json:"suitability"`
	Reasoning          string      `json:"reasoning"`
	VolatilityAssessed Volatility  `json:"volatility_assessed"`
}

// ValidationError reports malformed scorer input. Reason is safe to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Scorer assesses client suitability from static reference tables.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	log logrus.FieldLogger
}

func NewScorer(log logrus.FieldLogger) *Scorer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scorer{log: log}
}

// Assess validates the inputs (ticker first, then risk profile) and looks up the verdict.
func (s *Scorer) Assess(ticker, riskProfile string) (*Assessment, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, &ValidationError{Reason: "ticker is required"}
	}

	profile, ok := ParseRiskProfile(riskProfile)
	if !ok {
		received := strings.ToLower(strings.TrimSpace(riskProfile))
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"risk_profile must be one of: %s. Received: '%s'",
			strings.Join(sortedProfileNames(), ", "), received,
		)}
	}

	vol := VolatilityOf(ticker)
	s.log.WithFields(logrus.Fields{
		"ticker":       ticker,
		"volatility":   vol.String(),
		"risk_profile": profile.String(),
	}).Info("volatility resolved")

	v := Lookup(profile, vol)
	out := &Assessment{
		Ticker:             ticker,
		RiskProfile:        profile,
		Suitability:        v.Suitability,
		Reasoning:          v.Reasoning,
		VolatilityAssessed: vol,
	}

	s.log.WithFields(logrus.Fields{
		"ticker":              out.Ticker,
		"risk_profile":        out.RiskProfile.String(),
		"suitability":         string(out.Suitability),
		"volatility_assessed": out.VolatilityAssessed.String(),
	}).Info("assessment result")

	return out, nil
}

func sortedProfileNames() []string {
	names := make([]string, 0, numRiskProfiles)
	for p := RiskProfile(0); p < numRiskProfiles; p++ {
		names = append(names, p.String())
	}
	sort.Strings(names)
	return names
}
