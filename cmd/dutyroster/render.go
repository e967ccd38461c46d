package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/paiban/dutyroster/pkg/diagnostic"
	"github.com/paiban/dutyroster/pkg/engine"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	postColor   = color.New(color.FgGreen)
	restColor   = color.New(color.FgYellow)
	leaveColor  = color.New(color.FgHiBlack)
	warnColor   = color.New(color.FgRed, color.Bold)
	noteColor   = color.New(color.FgMagenta)
)

// displayWidth 终端显示宽度，全角字符按两格计算
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func cellColor(s model.State) *color.Color {
	switch {
	case s.IsPost():
		return postColor
	case s == model.StateRest:
		return restColor
	default:
		return leaveColor
	}
}

// renderGrid 输出员工 × 日的值班表
func renderGrid(w io.Writer, grid *model.Grid) {
	names := grid.Employees()
	nameWidth := 4
	for _, n := range names {
		if dw := displayWidth(n); dw > nameWidth {
			nameWidth = dw
		}
	}
	cellWidth := 2
	for _, p := range grid.Posts() {
		if dw := displayWidth(p.Name); dw > cellWidth {
			cellWidth = dw
		}
	}
	for _, l := range []string{model.LabelRest, model.LabelLeave} {
		if dw := displayWidth(l); dw > cellWidth {
			cellWidth = dw
		}
	}

	var header strings.Builder
	header.WriteString(pad("", nameWidth))
	for d := 1; d <= grid.Days(); d++ {
		header.WriteString(" ")
		header.WriteString(pad(fmt.Sprintf("%d", d), cellWidth))
	}
	fmt.Fprintln(w, headerColor.Sprint(header.String()))

	for e, name := range names {
		var line strings.Builder
		line.WriteString(pad(name, nameWidth))
		for d := 0; d < grid.Days(); d++ {
			s := grid.At(e, d)
			line.WriteString(" ")
			line.WriteString(cellColor(s).Sprint(pad(grid.Label(e, d), cellWidth)))
		}
		fmt.Fprintln(w, line.String())
	}
}

// renderResult 输出求解结果摘要、值班表与统计
func renderResult(w io.Writer, resp *engine.Response) {
	fmt.Fprintf(w, "%s\n", headerColor.Sprintf("=== %d年%d月值班表 ===", resp.Year, resp.Month))
	fmt.Fprintf(w, "放宽级别: %d  状态: %s  目标值: %d  耗时: %s\n",
		resp.Level, resp.Status, resp.Objective, resp.Duration.Round(time.Millisecond))
	if resp.Profile != "" {
		fmt.Fprintf(w, "约束强度: %s\n", resp.Profile)
	}
	fmt.Fprintln(w)

	if resp.Grid != nil {
		renderGrid(w, resp.Grid)
		fmt.Fprintln(w)
	}

	if resp.Report != nil {
		fmt.Fprintln(w, headerColor.Sprint("统计"))
		for _, er := range resp.Report.Employees {
			fmt.Fprintf(w, "  %s\n", er.Summary())
			if len(er.CrossMonth.Narrative) > 0 {
				fmt.Fprintf(w, "    %s\n", er.CrossMonth.Narrative)
			}
		}
		if f := resp.Report.Fairness; f != nil {
			fmt.Fprintf(w, "  公平性得分: %.1f  工时基尼系数: %.3f\n", f.OverallScore, f.HoursGini)
		}
		fmt.Fprintln(w)
	}

	renderNotes(w, resp.Notes)
	for _, c := range resp.Warnings {
		fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("警告:"), c.Message)
	}
}

func renderNotes(w io.Writer, notes []model.Note) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w, headerColor.Sprint("说明"))
	for _, n := range notes {
		prefix := ""
		if n.Level != model.NoLevel {
			prefix = fmt.Sprintf("[级别%d] ", n.Level)
		}
		fmt.Fprintf(w, "  %s%s\n", noteColor.Sprint(prefix), n.Message)
	}
}

// renderDiagnosis 输出无解诊断
func renderDiagnosis(w io.Writer, d *diagnostic.Diagnosis) {
	if d == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("无解原因:"), d.Detail)
	fmt.Fprintf(w, "类别: %s  紧急程度: %s  预计修复: %s\n", d.Category, d.Urgency, d.EstimatedFix)
	for i, r := range d.Remedies {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r)
	}
}

// renderProfiles 输出放宽阶梯
func renderProfiles(w io.Writer, ladder []profile.Profile) {
	for _, p := range ladder {
		fmt.Fprintf(w, "%s %s\n", headerColor.Sprintf("级别 %d", p.Level), p.Note)
		fmt.Fprintf(w, "  %s\n", p.Describe())
	}
}
