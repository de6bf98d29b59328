package log_test

import (
	"testing"

	"github.com/on-the-ground/effect_ive_go/effects/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_RoutesLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	log.Log(logger, log.LogDebug, "d", nil)
	log.Log(logger, log.LogInfo, "i", nil)
	log.Log(logger, log.LogWarn, "w", nil)
	log.Log(logger, log.LogError, "e", nil)
	log.Log(logger, log.LogLevel("unknown"), "u", nil)

	entries := logs.AllUntimed()
	levels := make([]zapcore.Level, len(entries))
	for i, e := range entries {
		levels[i] = e.Level
	}
	assert.Equal(t, []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
		zapcore.InfoLevel,
	}, levels)
}

func TestLog_FieldsAreSortedByKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	log.Log(zap.New(core), log.LogInfo, "msg", map[string]interface{}{
		"b": 2,
		"a": "one",
	})

	entry := logs.All()[0]
	assert.Equal(t, "a", entry.Context[0].Key)
	assert.Equal(t, "b", entry.Context[1].Key)
	assert.Equal(t, map[string]interface{}{"a": "one", "b": int64(2)}, entry.ContextMap())
}

func TestLog_NilLoggerIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		log.Log(nil, log.LogError, "dropped", nil)
	})
	assert.NotNil(t, log.OrNop(nil))
}
