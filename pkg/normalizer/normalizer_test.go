package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/model"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		input    string
		expected []int
		wantErr  bool
	}{
		{"5", []int{5}, false},
		{"5日", []int{5}, false},
		{"3,7", []int{3, 7}, false},
		{"10-12", []int{10, 11, 12}, false},
		{"1日~2日", []int{1, 2}, false},
		{"3、8号", []int{3, 8}, false},
		{"", nil, true},
		{"abc", nil, true},
		{"9-2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			days, err := ParseDays(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestNormalize_UnknownEmployeeSkipped(t *testing.T) {
	n := New([]string{"甲", "乙"}, []string{"A岗"})
	res := n.Normalize([]RawEntry{
		{Employee: "丁", Leave: []string{"3"}},
		{Employee: "甲", Leave: []string{"4"}},
	}, 30)

	assert.Equal(t, []model.LeaveRequest{{Employee: "甲", Day: 4}}, res.Leaves)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, model.NoteInput, res.Notes[0].Kind)
	assert.Contains(t, res.Notes[0].Message, "丁")
}

func TestNormalize_OutOfRangeAndDuplicates(t *testing.T) {
	n := New([]string{"甲"}, []string{"A岗"})
	res := n.Normalize([]RawEntry{
		{Employee: "甲", Leave: []string{"5", "5日", "4-6", "31"}},
	}, 30)

	assert.Equal(t, []int{4, 5, 6}, res.LeaveDays("甲"))
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0].Message, "31")
}

func TestNormalize_Preferences(t *testing.T) {
	n := New([]string{"甲", "乙"}, []string{"A岗", "B岗"})
	res := n.Normalize([]RawEntry{
		{Employee: "乙", Preferences: []RawPreference{
			{Day: "2", Post: "A岗", Direction: "希望"},
			{Day: "2", Post: "A岗", Direction: "avoid"},
			{Day: "3", Post: "C岗", Direction: "desire"},
			{Day: "4", Post: "B岗", Direction: "maybe"},
		}},
		{Employee: "甲", Preferences: []RawPreference{
			{Day: "1", Post: "B岗", Direction: "avoid"},
		}},
	}, 30)

	assert.Equal(t, []model.PostPreference{
		{Employee: "甲", Day: 1, Post: "B岗", Direction: model.DirectionAvoid},
		{Employee: "乙", Day: 2, Post: "A岗", Direction: model.DirectionDesire},
	}, res.Preferences)
	assert.Len(t, res.Notes, 3)
}
