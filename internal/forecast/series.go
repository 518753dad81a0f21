// Chuỗi thời gian theo tháng và các kiểu dữ liệu trả về của dịch vụ dự báo

package forecast

import (
	"fmt"
	"sort"
	"time"
)

// Định dạng tháng trong dữ liệu vào/ra
const monthLayout = "2006-01"

// Các trường mục tiêu có thể dự báo
const (
	TargetRevenue = "revenue"
	TargetAOV     = "aov"
	TargetOrders  = "orders"
)

// MonthlySample là một tháng dữ liệu lịch sử
type MonthlySample struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	AOV     float64 `json:"aov"`
	Orders  float64 `json:"orders"`
}

// Point là một điểm trên trục thời gian, lịch sử hoặc dự báo
type Point struct {
	Month     string  `json:"month"`
	Value     float64 `json:"value"`
	Type      string  `json:"type"`
	Trend     float64 `json:"trend"`
	YhatLower float64 `json:"yhat_lower"`
	YhatUpper float64 `json:"yhat_upper"`
}

// Loại điểm dữ liệu
const (
	PointHistorical = "historical"
	PointForecast   = "forecast"
)

// Metrics là độ chính xác của mô hình trên khoảng lịch sử
type Metrics struct {
	MAPE float64 `json:"mape"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

type Components struct {
	Trend       string `json:"trend"`
	Seasonality string `json:"seasonality"`
}

type Result struct {
	Historical []Point    `json:"historical"`
	Forecast   []Point    `json:"forecast"`
	Metrics    Metrics    `json:"metrics"`
	Components Components `json:"components"`
}

func parseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t, nil
}

// monthsBetween đếm số tháng lịch từ a tới b (b cùng hoặc sau a)
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
}

// sortSamples sắp xếp các tháng tăng dần theo thời gian, trả về bản sao
// cùng các mốc thời gian đã parse tương ứng
func sortSamples(samples []MonthlySample) ([]MonthlySample, []time.Time, error) {
	type dated struct {
		sample MonthlySample
		ts     time.Time
	}
	ds := make([]dated, len(samples))
	for i, s := range samples {
		ts, err := parseMonth(s.Month)
		if err != nil {
			return nil, nil, err
		}
		ds[i] = dated{sample: s, ts: ts}
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].ts.Before(ds[j].ts) })

	sorted := make([]MonthlySample, len(ds))
	stamps := make([]time.Time, len(ds))
	for i, d := range ds {
		sorted[i] = d.sample
		stamps[i] = d.ts
	}
	return sorted, stamps, nil
}

// targetValue đọc trường mục tiêu của một tháng dữ liệu
func targetValue(s MonthlySample, target string) (float64, error) {
	switch target {
	case TargetRevenue:
		return s.Revenue, nil
	case TargetAOV:
		return s.AOV, nil
	case TargetOrders:
		return s.Orders, nil
	default:
		return 0, fmt.Errorf("unknown forecast type %q", target)
	}
}
