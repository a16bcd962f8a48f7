package rttest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFirstSampleSeedsEstimator(t *testing.T) {
	e := New(ProfileRenoCubic)
	e.Sample(40 * time.Millisecond)
	require.Equal(t, 40*time.Millisecond, e.SRTT())
	require.Equal(t, 20*time.Millisecond, e.RTTVar())
	require.Equal(t, 100*time.Millisecond, e.RTO()) // 1.5*40ms clamps to RTO_MIN
}

func TestRTOStaysWithinRenoCubicBounds(t *testing.T) {
	e := New(ProfileRenoCubic)
	for i := 0; i < 50; i++ {
		e.Sample(5 * time.Second) // pathological, huge jitter
		require.GreaterOrEqual(t, e.RTO(), 100*time.Millisecond)
		require.LessOrEqual(t, e.RTO(), 2*time.Second)
	}
}

func TestRTOWidensUnderBBRProfile(t *testing.T) {
	e := New(ProfileBBR)
	for i := 0; i < 50; i++ {
		e.Sample(5 * time.Second)
	}
	require.Greater(t, e.RTO(), 2*time.Second)
	require.LessOrEqual(t, e.RTO(), 3*time.Second)
}

func TestSubsequentSamplesSmooth(t *testing.T) {
	e := New(ProfileRenoCubic)
	e.Sample(100 * time.Millisecond)
	first := e.SRTT()
	e.Sample(200 * time.Millisecond)
	require.Greater(t, e.SRTT(), first)
	require.Less(t, e.SRTT(), 200*time.Millisecond)
}
