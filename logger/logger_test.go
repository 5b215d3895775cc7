package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerCarriesID(t *testing.T) {
	var buf bytes.Buffer
	_, err := Init(Config{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithFields(ctx, map[string]interface{}{"provider": "sbo"})
	Info(ctx).Str("transaction_id", "T1").Msg("settled")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "sbo", line["provider"])
	assert.Equal(t, "T1", line["transaction_id"])
	assert.Equal(t, "settled", line["message"])
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	_, err := Init(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	Info(context.Background()).Msg("dropped")
	assert.Zero(t, buf.Len())

	WarnGlobal().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Equal(t, "", GetRequestID(context.Background()))
}
