// Bộ điều phối dự báo: kiểm tra dữ liệu vào, huấn luyện mô hình mùa vụ
// trên khoảng lịch sử rồi sinh các tháng dự báo kèm độ chính xác của mô hình

package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/pkg/log"
)

const (
	// DefaultPeriods là số tháng dự báo khi request không chỉ định
	DefaultPeriods = 6
	// Số tháng lịch sử tối thiểu để huấn luyện được mô hình
	minSamples = 3
)

// ErrInsufficientData mang đúng thông điệp cố định trả về cho client
var ErrInsufficientData = errors.New("Insufficient data. Need at least 3 months of historical data.")

type Forecaster struct {
	Logger log.Logger
	Config *cfg.Config
}

func NewForecaster(logger log.Logger, config *cfg.Config) (*Forecaster, error) {
	return &Forecaster{
		Logger: logger,
		Config: config,
	}, nil
}

// Forecast huấn luyện mô hình trên chuỗi tháng đã cho và dự báo thêm periods tháng.
// Giá trị các điểm lịch sử là số liệu thực, xu hướng và khoảng tin cậy lấy từ mô hình
func (f *Forecaster) Forecast(ctx context.Context, samples []MonthlySample, periods int, target string) (*Result, error) {
	if len(samples) < minSamples {
		return nil, ErrInsufficientData
	}
	if periods < 0 {
		return nil, fmt.Errorf("periods must not be negative, got %d", periods)
	}

	sorted, stamps, err := sortSamples(samples)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	months := make([]time.Month, len(sorted))
	for i, s := range sorted {
		y, err := targetValue(s, target)
		if err != nil {
			return nil, err
		}
		xs[i] = float64(monthsBetween(stamps[0], stamps[i]))
		ys[i] = y
		months[i] = stamps[i].Month()
	}

	f.Logger.Info(ctx, "Forecast request: type=%s periods=%d points=%d", target, periods, len(sorted))
	model := fitSeasonalTrend(xs, ys, months)

	historical := make([]Point, len(sorted))
	fitted := make([]float64, len(sorted))
	for i := range sorted {
		yhat := model.predict(xs[i], months[i])
		lower, upper := model.interval(yhat)
		fitted[i] = yhat
		historical[i] = Point{
			Month:     sorted[i].Month,
			Value:     ys[i],
			Type:      PointHistorical,
			Trend:     model.trend(xs[i]),
			YhatLower: lower,
			YhatUpper: upper,
		}
	}

	forecast := make([]Point, 0, periods)
	lastX := xs[len(xs)-1]
	lastStamp := stamps[len(stamps)-1]
	for p := 1; p <= periods; p++ {
		ts := lastStamp.AddDate(0, p, 0)
		x := lastX + float64(p)
		yhat := model.predict(x, ts.Month())
		lower, upper := model.interval(yhat)
		forecast = append(forecast, Point{
			Month:     ts.Format(monthLayout),
			Value:     yhat,
			Type:      PointForecast,
			Trend:     model.trend(x),
			YhatLower: lower,
			YhatUpper: upper,
		})
	}

	metrics := computeMetrics(ys, fitted)
	f.Logger.Info(ctx, "Forecast generated: periods=%d mape=%.2f%% mae=%.2f", len(forecast), metrics.MAPE, metrics.MAE)

	return &Result{
		Historical: historical,
		Forecast:   forecast,
		Metrics:    metrics,
		Components: Components{Trend: "multiplicative", Seasonality: "yearly"},
	}, nil
}

// computeMetrics so giá trị thực với giá trị mô hình khớp trên khoảng lịch sử.
// MAPE bỏ qua các tháng có giá trị thực bằng 0 để kết quả luôn hữu hạn,
// toàn bộ bằng 0 thì MAPE là 0
func computeMetrics(actuals, fitted []float64) Metrics {
	var mapeSum float64
	var mapeCount int
	var maeSum, mseSum float64

	for i := range actuals {
		diff := actuals[i] - fitted[i]
		maeSum += math.Abs(diff)
		mseSum += diff * diff
		if actuals[i] != 0 {
			mapeSum += math.Abs(diff / actuals[i])
			mapeCount++
		}
	}

	n := float64(len(actuals))
	m := Metrics{
		MAE:  maeSum / n,
		RMSE: math.Sqrt(mseSum / n),
	}
	if mapeCount > 0 {
		m.MAPE = mapeSum / float64(mapeCount) * 100
	}
	return m
}
