package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/config"
)

type fakeBedrock struct {
	in   *bedrockruntime.InvokeModelInput
	body string
	err  error
}

func (f *fakeBedrock) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBuildSystemPrompt_NoTools(t *testing.T) {
	p := BuildSystemPrompt(config.ToolConfig{})
	assert.Contains(t, p, "You are MarketPulse")
	assert.Contains(t, p, "don't have access to live data tools")
	assert.NotContains(t, p, "get_stock_price")
}

func TestBuildSystemPrompt_ListsEnabledToolsInOrder(t *testing.T) {
	p := BuildSystemPrompt(config.ToolConfig{EnableCalendarTool: true, EnableRiskTool: true})

	assert.NotContains(t, p, "get_stock_price")
	risk := strings.Index(p, "assess_client_suitability")
	cal := strings.Index(p, "check_market_holidays")
	require.GreaterOrEqual(t, risk, 0)
	require.GreaterOrEqual(t, cal, 0)
	assert.Less(t, risk, cal)
}

func TestBuildSystemPrompt_NeverClaimsLiveData(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		tools := config.ToolConfig{
			EnableStockTool:    mask&1 != 0,
			EnableRiskTool:     mask&2 != 0,
			EnableCalendarTool: mask&4 != 0,
		}
		p := BuildSystemPrompt(tools)

		assert.NotContains(t, p, "Capabilities available", tools)
		assert.NotContains(t, p, "Current stock information", tools)
		if mask == 0 {
			assert.Contains(t, p, "don't have access to live data tools", tools)
			continue
		}
		assert.Contains(t, p, "You cannot call tools or fetch live data.", tools)
		assert.Contains(t, p, "are not available from this assistant", tools)
		for _, name := range tools.Enabled() {
			assert.Contains(t, p, "- "+name+":", tools)
		}
	}
}

func TestAgent_Ask(t *testing.T) {
	fb := &fakeBedrock{body: `{"content":[{"type":"text","text":"AAPL closed higher."}],"stop_reason":"end_turn"}`}
	log, _ := test.NewNullLogger()
	a := New(fb, "", 0, config.ToolConfig{EnableStockTool: true}, log)

	reply, err := a.Ask(context.Background(), "  How is AAPL doing?  ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL closed higher.", reply)

	assert.Equal(t, DefaultModelID, aws.ToString(fb.in.ModelId))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(fb.in.Body, &payload))
	assert.Equal(t, "bedrock-2023-05-31", payload["anthropic_version"])
	assert.EqualValues(t, DefaultMaxTokens, payload["max_tokens"])
	assert.Equal(t, a.SystemPrompt(), payload["system"])
	assert.NotContains(t, payload, "tools", "single-shot call registers no tools")

	msgs := payload["messages"].([]any)
	require.Len(t, msgs, 1)
	content := msgs[0].(map[string]any)["content"].([]any)
	assert.Equal(t, "How is AAPL doing?", content[0].(map[string]any)["text"])
}

func TestAgent_AskRejectsEmptyPrompt(t *testing.T) {
	fb := &fakeBedrock{}
	a := New(fb, "m", 10, config.ToolConfig{}, nil)

	_, err := a.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Nil(t, fb.in)
}

func TestAgent_AskErrors(t *testing.T) {
	a := New(&fakeBedrock{err: errors.New("ThrottlingException")}, "m", 10, config.ToolConfig{}, nil)
	_, err := a.Ask(context.Background(), "hi")
	assert.ErrorContains(t, err, "ThrottlingException")

	a = New(&fakeBedrock{body: `{"content":[]}`}, "m", 10, config.ToolConfig{}, nil)
	_, err = a.Ask(context.Background(), "hi")
	assert.ErrorContains(t, err, "no text content")

	a = New(&fakeBedrock{body: `not json`}, "m", 10, config.ToolConfig{}, nil)
	_, err = a.Ask(context.Background(), "hi")
	assert.Error(t, err)
}
