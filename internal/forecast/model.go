// Mô hình xu hướng tuyến tính kết hợp hệ số mùa vụ nhân theo tháng lịch.
// Khoảng tin cậy 80% được suy từ độ lệch chuẩn của phần dư trên khoảng lịch sử

package forecast

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phân vị chuẩn hai phía cho khoảng tin cậy 80%
const intervalZ = 1.2816

type seasonalTrendModel struct {
	alpha, beta float64
	// Hệ số mùa vụ theo tháng lịch, chỉ số 1..12, tháng thiếu dữ liệu giữ hệ số 1
	seasonal [13]float64
	sigma    float64
}

// fitSeasonalTrend huấn luyện mô hình trên chuỗi (xs, ys) với xs là khoảng cách
// tháng lịch so với tháng đầu tiên và months là tháng lịch của từng điểm
func fitSeasonalTrend(xs, ys []float64, months []time.Month) *seasonalTrendModel {
	m := &seasonalTrendModel{}
	if xs[0] == xs[len(xs)-1] {
		// Mọi điểm cùng một tháng, xu hướng suy biến thành hằng số trung bình
		m.alpha = stat.Mean(ys, nil)
	} else {
		m.alpha, m.beta = stat.LinearRegression(xs, ys, nil, false)
	}

	// Hệ số mùa vụ là trung bình tỉ số giá trị thực trên xu hướng của từng tháng lịch
	var ratioSum [13]float64
	var ratioCount [13]int
	for i := range ys {
		trend := m.alpha + m.beta*xs[i]
		if trend <= 0 {
			continue
		}
		month := int(months[i])
		ratioSum[month] += ys[i] / trend
		ratioCount[month]++
	}
	for month := 1; month <= 12; month++ {
		if ratioCount[month] == 0 {
			m.seasonal[month] = 1
			continue
		}
		m.seasonal[month] = ratioSum[month] / float64(ratioCount[month])
	}

	// Độ lệch chuẩn phần dư cho khoảng tin cậy của dự báo
	residuals := make([]float64, len(ys))
	for i := range ys {
		residuals[i] = ys[i] - m.predict(xs[i], months[i])
	}
	m.sigma = stat.StdDev(residuals, nil)

	return m
}

// trend trả về thành phần xu hướng tại khoảng cách tháng x
func (m *seasonalTrendModel) trend(x float64) float64 {
	return m.alpha + m.beta*x
}

// predict trả về giá trị dự báo (xu hướng nhân hệ số mùa vụ) tại tháng cho trước
func (m *seasonalTrendModel) predict(x float64, month time.Month) float64 {
	return m.trend(x) * m.seasonal[int(month)]
}

// interval trả về cận dưới và cận trên 80% quanh giá trị dự báo
func (m *seasonalTrendModel) interval(yhat float64) (float64, float64) {
	return yhat - intervalZ*m.sigma, yhat + intervalZ*m.sigma
}
