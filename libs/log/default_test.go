package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tendermint/bridge/libs/log"
)

func TestNewDefaultLogger(t *testing.T) {
	testCases := map[string]struct {
		format    string
		level     string
		expectErr bool
	}{
		"invalid format": {
			format:    "foo",
			level:     log.LogLevelInfo,
			expectErr: true,
		},
		"invalid level": {
			format:    log.LogFormatJSON,
			level:     "foo",
			expectErr: true,
		},
		"valid format and level": {
			format:    log.LogFormatJSON,
			level:     log.LogLevelInfo,
			expectErr: false,
		},
	}

	for name, tc := range testCases {
		tc := tc

		t.Run(name, func(t *testing.T) {
			_, err := log.NewDefaultLogger(tc.format, tc.level)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.NewDefaultLoggerWithOutput(&buf, log.LogFormatJSON, log.LogLevelInfo)
	require.NoError(t, err)

	logger.Debug("dropped", "k", "v")
	require.Zero(t, buf.Len())

	logger.With("module", "vault").Info("locked", "nonce", 7)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "locked", line["message"])
	require.Equal(t, "vault", line["module"])
	require.EqualValues(t, 7, line["nonce"])
	require.Equal(t, "info", line["level"])
}

func TestOverrideWithNewLogger(t *testing.T) {
	logger := log.MustNewDefaultLogger(log.LogFormatPlain, log.LogLevelInfo)
	require.NoError(t, log.OverrideWithNewLogger(logger, log.LogFormatJSON, log.LogLevelDebug))
	require.Error(t, log.OverrideWithNewLogger(logger, "foo", log.LogLevelDebug))
	require.Error(t, log.OverrideWithNewLogger(log.NewNopLogger(), log.LogFormatJSON, log.LogLevelDebug))
}
