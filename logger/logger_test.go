package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, Level("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, Level(" warn "))
	require.Equal(t, zerolog.InfoLevel, Level(""))
	require.Equal(t, zerolog.InfoLevel, Level("verbose"))
}
