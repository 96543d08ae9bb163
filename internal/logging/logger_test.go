package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("ticker", "TSLA").Info("scored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scored", line["msg"])
	assert.Equal(t, "TSLA", line["ticker"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, New("chatty").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("").GetLevel())
}

func TestFromContext_AddsRequestID(t *testing.T) {
	base, hook := test.NewNullLogger()
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})

	FromContext(ctx, base).Info("handled")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "req-123", hook.LastEntry().Data["aws_request_id"])
}

func TestFromContext_NoLambdaContext(t *testing.T) {
	base, hook := test.NewNullLogger()

	FromContext(context.Background(), base).Info("local")

	require.Len(t, hook.Entries, 1)
	assert.NotContains(t, hook.LastEntry().Data, "aws_request_id")
}
