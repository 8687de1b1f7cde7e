package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("k", "v").Info("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])

	assert.Equal(t, logrus.InfoLevel, New("loud", "text", &buf).GetLevel())
}

func TestContextEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	ctx := WithEntry(context.Background(), logger.WithField("request_id", "r1"))
	ctx = AddField(ctx, "user_id", "u1")
	FromContext(ctx).Info("done")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "r1", line["request_id"])
	assert.Equal(t, "u1", line["user_id"])

	assert.NotNil(t, FromContext(context.Background()))
}

func TestAddField_VisibleToParent(t *testing.T) {
	logger := New("info", "json", &bytes.Buffer{})
	parent := WithEntry(context.Background(), logger.WithField("request_id", "r1"))

	type key struct{}
	child := context.WithValue(parent, key{}, "x")
	AddField(child, "user_id", "u1")

	assert.Equal(t, "u1", FromContext(parent).Data["user_id"])
}
