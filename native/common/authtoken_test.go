package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutorTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Unix(1_700_000_000, 0)

	token, err := IssueExecutorToken(secret, "sins1executor", time.Minute, now)
	require.NoError(t, err)

	err = VerifyExecutorToken(secret, token, "sins1executor", now.Add(time.Second))
	require.NoError(t, err)
}

func TestExecutorTokenRejectsWrongSubject(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Unix(1_700_000_000, 0)

	token, err := IssueExecutorToken(secret, "sins1executor", time.Minute, now)
	require.NoError(t, err)

	err = VerifyExecutorToken(secret, token, "sins1someoneelse", now)
	require.ErrorIs(t, err, ErrExecutorTokenInvalid)
}

func TestExecutorTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Unix(1_700_000_000, 0)

	token, err := IssueExecutorToken(secret, "sins1executor", time.Minute, now)
	require.NoError(t, err)

	err = VerifyExecutorToken(secret, token, "sins1executor", now.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrExecutorTokenInvalid)
}
