package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/diagnostic"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
)

const sampleYAML = `
year: 2024
month: 6
base_date: "2024-06-01"
employees:
  - name: 甲
    priorities:
      值班: highest
      门岗: forbidden
  - name: 乙
    rules:
      max_consecutive_days: 3
      forbidden_days: [1, 15]
  - name: 机动
    backup: true
posts:
  - name: 值班
    category: overnight
    hours: 16
  - name: 门岗
    category: day
    hours: 8
    alternating: true
requests:
  - employee: 乙
    leave: ["10-12"]
    preferences:
      - day: "5"
        post: 值班
        direction: desire
tail:
  甲: [值班, 补休]
`

func TestParseRequest(t *testing.T) {
	req, err := parseRequest([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 2024, req.Year)
	assert.Equal(t, 6, req.Month)
	assert.Equal(t, "2024-06-01", req.BaseDate)
	require.Len(t, req.Employees, 3)
	assert.Equal(t, model.PriorityHighest, req.Employees[0].Priorities["值班"])
	assert.Equal(t, model.PriorityForbidden, req.Employees[0].Priorities["门岗"])
	require.NotNil(t, req.Employees[1].Rules)
	assert.Equal(t, 3, req.Employees[1].Rules.MaxConsecutiveDays)
	assert.Equal(t, []int{1, 15}, req.Employees[1].Rules.ForbiddenDays)
	assert.True(t, req.Employees[2].Backup)

	require.Len(t, req.Posts, 2)
	assert.Equal(t, model.CategoryOvernight, req.Posts[0].Category)
	assert.True(t, req.Posts[1].Alternating)

	require.Len(t, req.Requests, 1)
	assert.Equal(t, []string{"10-12"}, req.Requests[0].Leave)
	assert.Equal(t, "desire", req.Requests[0].Preferences[0].Direction)
	assert.Equal(t, []string{"值班", "补休"}, req.Tail["甲"])
}

func TestParseRequest_BadPriority(t *testing.T) {
	_, err := parseRequest([]byte("employees:\n  - name: 甲\n    priorities:\n      值班: urgent\n"))
	assert.Error(t, err)
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 2, displayWidth("12"))
	assert.Equal(t, 4, displayWidth("补休"))
	assert.Equal(t, 5, displayWidth("值班A"))
	assert.Equal(t, "甲  ", pad("甲", 4))
	assert.Equal(t, "值班A", pad("值班A", 3))

	// 半角片假名占一格，全角字母占两格
	assert.Equal(t, 2, displayWidth("ｱｲ"))
	assert.Equal(t, 4, displayWidth("ＡＢ"))
	assert.Equal(t, "ｱｲ  ", pad("ｱｲ", 4))
}

func TestRenderGrid(t *testing.T) {
	color.NoColor = true

	posts := []model.Post{{Name: "值班", Category: model.CategoryOvernight, Hours: 16}}
	grid := model.NewGrid([]string{"甲", "乙"}, posts, [][]model.State{
		{0, model.StateRest, 0},
		{model.StateLeave, 0, model.StateRest},
	})

	var buf bytes.Buffer
	renderGrid(&buf, grid)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "     1    2    3", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "甲   值班 补休 值班", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "乙   休假 值班 补休", strings.TrimRight(lines[2], " "))
}

func TestRenderDiagnosis(t *testing.T) {
	color.NoColor = true
	sev := diagnostic.Lookup(diagnostic.CategoryStaffingShortage)
	d := diagnostic.Diagnosis{
		Category:     diagnostic.CategoryStaffingShortage,
		Detail:       "员工数少于岗位数",
		Remedies:     []string{"增加值班人员"},
		Urgency:      sev.Urgency,
		EstimatedFix: sev.EstimatedFix,
	}

	var buf bytes.Buffer
	renderDiagnosis(&buf, &d)
	out := buf.String()
	assert.Contains(t, out, "无解原因: 员工数少于岗位数")
	assert.Contains(t, out, "staffing_shortage")
	assert.Contains(t, out, "1. ")
}

func TestDescribeError(t *testing.T) {
	ve := &apperrors.ValidationErrors{}
	ve.Add("Request.Month", "月份必须小于或等于12")
	ve.Add("Request.Employees", "至少需要2名员工")

	err := describeError(ve.ToAppError())
	assert.Equal(t, "验证失败\n  Request.Employees: 至少需要2名员工\n  Request.Month: 月份必须小于或等于12", err.Error())

	plain := apperrors.New(apperrors.CodeTimeout, "求解超时")
	assert.Same(t, plain, describeError(plain))
}

func TestProfilesCommand(t *testing.T) {
	color.NoColor = true
	cmd := profilesCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--custom"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	for level := 0; level <= 5; level++ {
		assert.Contains(t, out, "级别 "+string(rune('0'+level)))
	}
}
