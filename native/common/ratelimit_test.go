package common_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	nativecommon "github.com/satsurance/pool/native/common"
)

func TestApproverRateLimiterBurstThenBlocks(t *testing.T) {
	l := nativecommon.NewApproverRateLimiter(1, 2)
	require.True(t, l.Allow("approver-a"))
	require.True(t, l.Allow("approver-a"))
	require.False(t, l.Allow("approver-a"))
}

func TestApproverRateLimiterPerKeyIndependent(t *testing.T) {
	l := nativecommon.NewApproverRateLimiter(1, 1)
	require.True(t, l.Allow("approver-a"))
	require.True(t, l.Allow("approver-b"))
	require.False(t, l.Allow("approver-a"))
}

func TestApproverRateLimiterNilIsPermissive(t *testing.T) {
	var l *nativecommon.ApproverRateLimiter
	require.True(t, l.Allow("anyone"))
}
