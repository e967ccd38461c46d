package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/model"
)

func TestLadder_Length(t *testing.T) {
	w := DefaultWeights()
	assert.Len(t, Ladder(w, false), 4)
	assert.Len(t, Ladder(w, true), 6)

	for i, p := range Ladder(w, true) {
		assert.Equal(t, i, p.Level)
	}
}

func TestAt_Table(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		level      int
		altHard    bool
		altWeight  int
		crossHard  bool
		doubleDuty int
		fourInARow bool
		gap        int
		loadGap    int
		backup     int
		leave      int
		preference int
		customHard bool
		customW    int
		priority   bool
		sacrifice  int
	}{
		{0, true, 0, true, 15, true, 30, 40, 10, 50, 5, true, 0, true, 0},
		{1, false, 10000, false, 15, false, 0, 40, 10, 50, 0, true, 0, true, 0},
		{2, false, 5000, false, 15, false, 0, 0, 1, 50, 0, true, 0, true, 0},
		{3, false, 1000, false, 0, false, 0, 0, 1, 5, 0, true, 0, true, 2},
		{4, false, 100, false, 0, false, 0, 0, 1, 5, 0, false, 30, true, 2},
		{5, false, 100, false, 0, false, 0, 0, 1, 5, 0, false, 3, false, 2},
	}

	for _, tt := range tests {
		p := At(tt.level, w)
		assert.Equal(t, tt.altHard, p.AlternatingHard, "level %d", tt.level)
		assert.Equal(t, tt.altWeight, p.AlternatingWeight, "level %d", tt.level)
		assert.Equal(t, tt.crossHard, p.CrossMonthHard, "level %d", tt.level)
		assert.Equal(t, tt.doubleDuty, p.DoubleDutyWeight, "level %d", tt.level)
		assert.Equal(t, tt.fourInARow, p.FourInARow, "level %d", tt.level)
		assert.Equal(t, tt.gap, p.DoubleDutyGapWeight, "level %d", tt.level)
		assert.Equal(t, tt.loadGap, p.DutyLoadGapWeight, "level %d", tt.level)
		assert.Equal(t, tt.backup, p.BackupWeight, "level %d", tt.level)
		assert.Equal(t, tt.leave, p.LeaveWeight, "level %d", tt.level)
		assert.Equal(t, tt.preference, p.PreferenceWeight, "level %d", tt.level)
		assert.Equal(t, tt.customHard, p.CustomHard, "level %d", tt.level)
		assert.Equal(t, tt.customW, p.CustomWeight, "level %d", tt.level)
		assert.Equal(t, tt.priority, p.Priority, "level %d", tt.level)
		assert.Equal(t, tt.sacrifice, p.Sacrifice, "level %d", tt.level)
		if tt.level > 0 {
			assert.Equal(t, 20, p.CrossMonthWeight)
		}
	}
}

func TestAt_Clamps(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, At(0, w), At(-3, w))
	assert.Equal(t, At(5, w), At(42, w))
}

func TestAt_Notes(t *testing.T) {
	w := DefaultWeights()
	assert.Empty(t, At(0, w).Note)
	assert.Equal(t, "双通宵均衡放宽", At(1, w).Note)
	assert.Equal(t, "紧急模式", At(5, w).Note)
}

func TestProfile_ValueSemantics(t *testing.T) {
	w := DefaultWeights()
	p := At(0, w)
	p.LeaveWeight = 1
	assert.Equal(t, 50, At(0, w).LeaveWeight)
}

func TestProfile_Describe(t *testing.T) {
	w := DefaultWeights()
	d := At(0, w).Describe()
	require.NotEmpty(t, d)
	assert.Contains(t, d, "隔日岗位:硬")
	assert.Contains(t, At(3, w).Describe(), "剔除休假:2")
	assert.True(t, At(0, w).Strict())
	assert.False(t, At(1, w).Strict())
}

func TestPriorityTable_Merge(t *testing.T) {
	base := DefaultPriorityTable()
	merged := base.Merge(PriorityTable{model.PriorityLow: 100, model.PriorityForbidden: 7})

	assert.Equal(t, 100, merged[model.PriorityLow])
	assert.Equal(t, -5, merged[model.PriorityHighest])
	_, ok := merged[model.PriorityForbidden]
	assert.False(t, ok)
	assert.Equal(t, 25, base[model.PriorityLow])
}
