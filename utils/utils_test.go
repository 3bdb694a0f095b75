package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func panicking(value interface{}) (err error) {
	defer RecoverWithError(&err)
	panic(value)
}

func TestRecoverWithError(t *testing.T) {
	err := panicking("index out of range")
	require.True(t, errors.Is(err, ErrPanic))
	require.Contains(t, err.Error(), "index out of range")

	err = panicking(errors.New("closed channel"))
	require.True(t, errors.Is(err, ErrPanic))
	require.Contains(t, err.Error(), "closed channel")
}

func TestRunesEndWith(t *testing.T) {
	require.True(t, RunesEndWith([]rune("running"), "ing"))
	require.True(t, RunesEndWith([]rune("naïve"), "ïve"))
	require.False(t, RunesEndWith([]rune("in"), "ing"))
	require.True(t, RunesEndWith([]rune("dog"), ""))
}

func TestHasNoUpper(t *testing.T) {
	require.True(t, HasNoUpper([]rune("dog")))
	require.True(t, HasNoUpper(nil))
	require.False(t, HasNoUpper([]rune("iPhone")))
}

func TestHashString(t *testing.T) {
	require.Equal(t, HashBytes([]byte("dog")), HashString("dog"))
	require.NotEqual(t, HashString("dog"), HashString("dogs"))
}
