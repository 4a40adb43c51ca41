package signalgrid

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendN(l *DecisionLog, n int) {
	for i := 1; i <= n; i++ {
		l.Append(newDecision(uint64(i), testEpoch, 1, ActionMaintainCurrent, fmt.Sprint(i), 75, DecisionAI))
	}
}

func TestDecisionLog(t *testing.T) {
	t.Run("newest first", func(t *testing.T) {
		l := NewDecisionLog(5)
		appendN(l, 3)

		recent := l.Recent(10)
		require.Len(t, recent, 3)
		assert.Equal(t, []uint64{3, 2, 1}, []uint64{recent[0].Seq, recent[1].Seq, recent[2].Seq})
		assert.Equal(t, 3, l.Len())
		assert.Equal(t, 5, l.Cap())
	})

	t.Run("keeps exactly the newest entries", func(t *testing.T) {
		l := NewDecisionLog(DefaultDecisionLogSize)
		appendN(l, 27)

		recent := l.Recent(100)
		require.Len(t, recent, DefaultDecisionLogSize)
		for i, d := range recent {
			assert.Equal(t, uint64(27-i), d.Seq)
		}
	})

	t.Run("limit", func(t *testing.T) {
		l := NewDecisionLog(DefaultDecisionLogSize)
		appendN(l, 8)

		assert.Len(t, l.Recent(4), 4)
		assert.Equal(t, uint64(8), l.Recent(1)[0].Seq)
		assert.Empty(t, l.Recent(0))
		assert.Empty(t, l.Recent(-3))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, NewDecisionLog(3).Recent(3))
	})

	t.Run("invalid capacity falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultDecisionLogSize, NewDecisionLog(0).Cap())
	})
}

func TestNewDecision(t *testing.T) {
	d := newDecision(7, testEpoch, 3, ActionExtendGreen, ReasonHighVolume, 88, DecisionAI)

	_, err := uuid.Parse(d.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), d.Seq)
	assert.Equal(t, 3, d.IntersectionID)
	assert.Equal(t, testEpoch, d.Timestamp)
	assert.Empty(t, d.Operator)

	other := newDecision(8, testEpoch, 3, ActionExtendGreen, ReasonHighVolume, 88, DecisionAI)
	assert.NotEqual(t, d.ID, other.ID)
}
