package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/model"
)

const (
	duty = model.State(0) // 值班（通宵）
	gate = model.State(1) // 门岗（隔日）
	L    = model.StateLeave
	R    = model.StateRest
)

func setup() ([]*model.Employee, []model.Post) {
	employees := []*model.Employee{
		model.NewEmployee("甲"),
		model.NewEmployee("乙"),
		model.NewEmployee("机动"),
	}
	posts := []model.Post{
		{Name: "值班", Category: model.CategoryOvernight, Hours: 16},
		{Name: "门岗", Category: model.CategoryDay, Hours: 8, Alternating: true},
	}
	return employees, posts
}

func grid(employees []*model.Employee, posts []model.Post, cells [][]model.State) *model.Grid {
	names := make([]string, len(employees))
	for i, e := range employees {
		names[i] = e.Name
	}
	return model.NewGrid(names, posts, cells)
}

func valid() [][]model.State {
	return [][]model.State{
		{duty, R, duty, R},
		{R, duty, R, duty},
		{gate, L, gate, L},
	}
}

func types(conflicts []Conflict) []ConflictType {
	out := make([]ConflictType, len(conflicts))
	for i, c := range conflicts {
		out[i] = c.Type
	}
	return out
}

func TestGridValidator_Valid(t *testing.T) {
	employees, posts := setup()
	tail := model.Tail{"乙": {-1: true}}
	v := NewGridValidator(employees, posts, tail, []bool{true, false, true, false})

	conflicts := v.Validate(grid(employees, posts, valid()))
	assert.Empty(t, conflicts)
}

func TestGridValidator_RestAfterOvernight(t *testing.T) {
	employees, posts := setup()
	cells := valid()
	cells[0][1] = L
	v := NewGridValidator(employees, posts, nil, nil)

	conflicts := v.Validate(grid(employees, posts, cells))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRestTime, conflicts[0].Type)
	assert.Equal(t, "甲", conflicts[0].Employee)
	assert.Equal(t, employees[0].ID, conflicts[0].EmployeeID)
	assert.Equal(t, 2, conflicts[0].Day)
}

func TestGridValidator_UnearnedAndConsecutiveRest(t *testing.T) {
	employees, posts := setup()
	cells := valid()
	cells[2] = []model.State{gate, R, R, L}
	v := NewGridValidator(employees, posts, nil, nil)

	conflicts := v.Validate(grid(employees, posts, cells))
	assert.Equal(t, []ConflictType{ConflictUnearned, ConflictUnearned, ConflictConsecutive}, types(conflicts))
}

func TestGridValidator_Coverage(t *testing.T) {
	employees, posts := setup()
	cells := valid()
	cells[1][1] = L // 2日 值班无人
	cells[2][1] = gate
	cells[0][2] = gate // 3日 门岗两人、值班无人
	cells[0][3] = L
	v := NewGridValidator(employees, posts, nil, nil)

	conflicts := Errors(v.Validate(grid(employees, posts, cells)))
	var coverage []Conflict
	for _, c := range conflicts {
		if c.Type == ConflictCoverage {
			coverage = append(coverage, c)
		}
	}
	require.Len(t, coverage, 3)
	assert.Equal(t, 2, coverage[0].Day)
	assert.Equal(t, 3, coverage[1].Day)
	assert.Contains(t, coverage[2].Message, "隔日岗位")
}

func TestGridValidator_AlternatingWarning(t *testing.T) {
	employees, posts := setup()
	cells := valid()
	cells[2][1] = gate // 2日 非值守日
	v := NewGridValidator(employees, posts, nil, []bool{true, false, true, false})

	conflicts := v.Validate(grid(employees, posts, cells))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictAlternating, conflicts[0].Type)
	assert.Equal(t, SeverityWarning, conflicts[0].Severity)
	assert.Empty(t, Errors(conflicts))
}

func TestGridValidator_CrossMonth(t *testing.T) {
	employees, posts := setup()
	tail := model.Tail{"甲": {-3: true, -1: true}}
	v := NewGridValidator(employees, posts, tail, nil)

	conflicts := v.Validate(grid(employees, posts, valid()))
	assert.Equal(t, []ConflictType{ConflictCrossMonth, ConflictCrossMonth}, types(conflicts))
	assert.Equal(t, 1, conflicts[0].Day)
}

func TestGridValidator_ForbiddenAndInvalidState(t *testing.T) {
	employees, posts := setup()
	employees[2].Priorities["门岗"] = model.PriorityForbidden
	cells := valid()
	cells[2][3] = model.StateUnset
	v := NewGridValidator(employees, posts, nil, nil)

	conflicts := v.Validate(grid(employees, posts, cells))
	assert.Equal(t, []ConflictType{ConflictForbidden, ConflictForbidden, ConflictState}, types(conflicts))
}

func TestGridValidator_RowMismatch(t *testing.T) {
	employees, posts := setup()
	v := NewGridValidator(employees[:2], posts, nil, nil)

	conflicts := v.Validate(grid(employees, posts, valid()))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictState, conflicts[0].Type)
}
