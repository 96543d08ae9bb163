package suitability

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssess_ConservativeTesla(t *testing.T) {
	s := NewScorer(nil)

	got, err := s.Assess("tsla", "CONSERVATIVE")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", got.Ticker)
	assert.Equal(t, Conservative, got.RiskProfile)
	assert.Equal(t, NotSuitable, got.Suitability)
	assert.Equal(t, High, got.VolatilityAssessed)
	assert.NotEmpty(t, got.Reasoning)
}

func TestAssess_ConservativeApple(t *testing.T) {
	got, err := NewScorer(nil).Assess("aapl", "conservative")
	require.NoError(t, err)
	assert.Equal(t, ClearMatch, got.Suitability)
	assert.Equal(t, Low, got.VolatilityAssessed)
}

func TestAssess_TrimsInput(t *testing.T) {
	got, err := NewScorer(nil).Assess("  brk.b ", "  Moderate\t")
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", got.Ticker)
	assert.Equal(t, Moderate, got.RiskProfile)
	assert.Equal(t, Low, got.VolatilityAssessed)
}

func TestAssess_UnknownTickerIsMedium(t *testing.T) {
	s := NewScorer(nil)
	for _, ticker := range []string{"XYZ", "IBM", "SHOP.TO", "Q"} {
		got, err := s.Assess(ticker, "aggressive")
		require.NoError(t, err, ticker)
		assert.Equal(t, Medium, got.VolatilityAssessed, ticker)
	}
}

func TestAssess_TickerRequired(t *testing.T) {
	for _, ticker := range []string{"", "   "} {
		_, err := NewScorer(nil).Assess(ticker, "moderate")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "ticker is required")
	}
}

func TestAssess_TickerCheckedBeforeProfile(t *testing.T) {
	_, err := NewScorer(nil).Assess("", "bogus")
	require.Error(t, err)
	assert.Equal(t, "ticker is required", err.Error())
}

func TestAssess_InvalidProfile(t *testing.T) {
	_, err := NewScorer(nil).Assess("AAPL", " Bogus ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t,
		"risk_profile must be one of: aggressive, conservative, moderate. Received: 'bogus'",
		verr.Reason)
}

func TestMatrix_AllCells(t *testing.T) {
	tests := []struct {
		profile RiskProfile
		vol     Volatility
		want    Suitability
	}{
		{Conservative, Low, ClearMatch},
		{Conservative, Medium, ProceedWithCaution},
		{Conservative, High, NotSuitable},
		{Moderate, Low, ClearMatch},
		{Moderate, Medium, ClearMatch},
		{Moderate, High, ProceedWithCaution},
		{Aggressive, Low, ClearMatch},
		{Aggressive, Medium, ClearMatch},
		{Aggressive, High, ClearMatch},
	}
	require.Len(t, tests, int(numRiskProfiles)*int(numVolatilities))

	valid := map[Suitability]bool{ClearMatch: true, ProceedWithCaution: true, NotSuitable: true}
	for _, tt := range tests {
		got := Lookup(tt.profile, tt.vol)
		assert.Equal(t, tt.want, got.Suitability, "%s/%s", tt.profile, tt.vol)
		assert.True(t, valid[got.Suitability])
		assert.NotEmpty(t, got.Reasoning, "%s/%s", tt.profile, tt.vol)
	}
}

func TestAssess_EveryCellReachable(t *testing.T) {
	// one representative ticker per volatility bucket
	tickers := map[Volatility]string{Low: "JNJ", Medium: "GOOGL", High: "COIN"}
	s := NewScorer(nil)
	for p := RiskProfile(0); p < numRiskProfiles; p++ {
		for v, ticker := range tickers {
			got, err := s.Assess(ticker, p.String())
			require.NoError(t, err)
			assert.Equal(t, Lookup(p, v), Verdict{got.Suitability, got.Reasoning})
		}
	}
}

func TestAssessment_JSON(t *testing.T) {
	got, err := NewScorer(nil).Assess("nvda", "moderate")
	require.NoError(t, err)

	b, err := json.Marshal(got)
	require.NoError(t, err)

	var wire map[string]string
	require.NoError(t, json.Unmarshal(b, &wire))
	assert.Equal(t, "NVDA", wire["ticker"])
	assert.Equal(t, "moderate", wire["risk_profile"])
	assert.Equal(t, "proceed_with_caution", wire["suitability"])
	assert.Equal(t, "high", wire["volatility_assessed"])
	assert.NotEmpty(t, wire["reasoning"])
}

func TestAssess_Idempotent(t *testing.T) {
	s := NewScorer(nil)
	a, err := s.Assess("meta", "conservative")
	require.NoError(t, err)
	b, err := s.Assess("meta", "conservative")
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, ja, jb)
}

func TestAssess_LogsVolatilityAndResult(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	_, err := NewScorer(logger).Assess("amd", "aggressive")
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].Data["volatility"])
	assert.Equal(t, "clear_match", entries[1].Data["suitability"])
}
