package stats

import (
	"math"
	"sort"
)

// FairnessMetrics 公平性指标（不含机动人员）
type FairnessMetrics struct {
	// 工时公平性
	HoursGini     float64 `json:"hours_gini"`      // 工时基尼系数 (0=完全公平, 1=完全不公平)
	HoursVariance float64 `json:"hours_variance"`  // 工时方差
	HoursStdDev   float64 `json:"hours_std_dev"`   // 工时标准差
	AvgHours      float64 `json:"avg_hours"`       // 人均工时
	MaxHours      float64 `json:"max_hours"`       // 最大工时
	MinHours      float64 `json:"min_hours"`       // 最小工时
	HoursRange    float64 `json:"hours_range"`     // 工时极差
	DutyDaysRange int     `json:"duty_days_range"` // 出勤天数极差

	// 岗位类型公平性
	OvernightGini   float64 `json:"overnight_gini"`    // 通宵分配基尼系数
	WeekendGini     float64 `json:"weekend_gini"`      // 周末出勤基尼系数
	DoubleDutyRange int     `json:"double_duty_range"` // 双通宵次数极差

	// 员工级别统计
	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分
	OverallScore float64 `json:"overall_score"` // 综合公平性评分 (0-100)
}

// EmployeeStat 员工工时偏差
type EmployeeStat struct {
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
	Deviation float64 `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性，机动人员不参与
func (f *FairnessAnalyzer) Analyze(employees []EmployeeReport) *FairnessMetrics {
	regular := make([]EmployeeReport, 0, len(employees))
	for _, e := range employees {
		if !e.Backup {
			regular = append(regular, e)
		}
	}
	if len(regular) == 0 {
		return &FairnessMetrics{OverallScore: 100}
	}

	hours := make([]float64, len(regular))
	overnight := make([]float64, len(regular))
	weekend := make([]float64, len(regular))
	duty := make([]float64, len(regular))
	double := make([]float64, len(regular))
	for i, e := range regular {
		hours[i] = e.Hours
		overnight[i] = float64(e.Overnight)
		weekend[i] = float64(e.Weekend)
		duty[i] = float64(e.DutyDays)
		double[i] = float64(e.DoubleDuty)
	}

	// 计算基本统计量
	avgHours := f.calculateMean(hours)
	variance := f.calculateVariance(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := f.calculateRange(hours)
	maxDuty, minDuty := f.calculateRange(duty)
	maxDouble, minDouble := f.calculateRange(double)

	stats := make([]EmployeeStat, len(regular))
	for i, e := range regular {
		stats[i] = EmployeeStat{Name: e.Name, Hours: e.Hours}
		if avgHours > 0 {
			stats[i].Deviation = (e.Hours - avgHours) / avgHours * 100
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Hours > stats[j].Hours
	})

	hoursGini := f.calculateGini(hours)
	overnightGini := f.calculateGini(overnight)
	weekendGini := f.calculateGini(weekend)

	return &FairnessMetrics{
		HoursGini:       hoursGini,
		HoursVariance:   variance,
		HoursStdDev:     stdDev,
		AvgHours:        avgHours,
		MaxHours:        maxHours,
		MinHours:        minHours,
		HoursRange:      maxHours - minHours,
		DutyDaysRange:   int(maxDuty - minDuty),
		OvernightGini:   overnightGini,
		WeekendGini:     weekendGini,
		DoubleDutyRange: int(maxDouble - minDouble),
		EmployeeStats:   stats,
		OverallScore:    f.calculateOverallScore(hoursGini, overnightGini, weekendGini, stdDev, avgHours),
	}
}

// calculateMean 计算平均值
func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(hoursGini, overnightGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		hoursWeight     = 0.4
		overnightWeight = 0.3
		weekendWeight   = 0.2
		stdDevWeight    = 0.1
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	hoursScore := (1 - hoursGini) * 100
	overnightScore := (1 - overnightGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := hoursWeight*hoursScore +
		overnightWeight*overnightScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}

// Compare 比较两个排班结果的公平性，正值表示 b 更不均衡
func (f *FairnessAnalyzer) Compare(a, b *Report) map[string]float64 {
	return map[string]float64{
		"hours_gini_diff":     b.Fairness.HoursGini - a.Fairness.HoursGini,
		"overnight_gini_diff": b.Fairness.OvernightGini - a.Fairness.OvernightGini,
		"weekend_gini_diff":   b.Fairness.WeekendGini - a.Fairness.WeekendGini,
		"overall_score_diff":  b.Fairness.OverallScore - a.Fairness.OverallScore,
	}
}
