// Package calendar 提供排班月份与隔日岗位的日期计算
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// MonthStart 返回指定年月第一天（UTC零点）
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn 返回指定年月的天数
func DaysIn(year int, month time.Month) int {
	return MonthStart(year, month).AddDate(0, 1, -1).Day()
}

// truncate 截断到UTC零点
func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Offset 返回月初距基准日的天数（月初在基准日之后为正）
func Offset(base time.Time, year int, month time.Month) int {
	return int(MonthStart(year, month).Sub(truncate(base)).Hours() / 24)
}

// ActiveDays 返回隔日岗位在该月每天是否需要值守
// 与基准日相差偶数天的日期为值守日
func ActiveDays(base time.Time, year int, month time.Month) ([]bool, error) {
	first := MonthStart(year, month)
	days := DaysIn(year, month)
	last := first.AddDate(0, 0, days-1)

	anchor := first
	if mod2(Offset(base, year, month)) == 1 {
		anchor = first.AddDate(0, 0, -1)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 2,
		Dtstart:  anchor,
		Until:    last,
	})
	if err != nil {
		return nil, fmt.Errorf("生成隔日规则失败: %w", err)
	}

	active := make([]bool, days)
	for _, occ := range rule.All() {
		if occ.Before(first) || occ.After(last) {
			continue
		}
		active[occ.Day()-1] = true
	}
	return active, nil
}

// mod2 非负取模
func mod2(n int) int {
	return ((n % 2) + 2) % 2
}
