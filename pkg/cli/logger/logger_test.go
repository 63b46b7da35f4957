package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scrapectl.log")
	require.NoError(t, Init(Options{File: path, Level: "debug", MaxSizeMB: 1}))

	Log("dispatching %s", "fetch")
	LogError(errors.New("boom"), "request failed")
	L().Info("settled", zap.String("outcome", "success"))
	CloseLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"dispatching fetch"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"outcome":"success"`)
}

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(Options{File: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLogBeforeInitIsNoop(t *testing.T) {
	CloseLog()
	assert.NotPanics(t, func() {
		Log("nothing")
		LogError(errors.New("x"), "nothing")
	})
}
