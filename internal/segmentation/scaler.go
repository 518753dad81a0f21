// Chuẩn hóa đặc trưng về trung bình 0 và độ lệch chuẩn 1 trên từng cột

package segmentation

import (
	"errors"
	"math"
)

type StandardScaler struct {
	Mean []float64
	Std  []float64
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit tính trung bình và độ lệch chuẩn tổng thể của từng cột trên dữ liệu huấn luyện.
// Cột có độ lệch chuẩn bằng 0 được giữ nguyên khi biến đổi (chia cho 1)
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("cannot fit scaler on empty data")
	}
	cols := len(rows[0])
	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, row := range rows {
		for j := 0; j < cols; j++ {
			mean[j] += row[j]
		}
	}
	for j := 0; j < cols; j++ {
		mean[j] /= float64(len(rows))
	}

	for _, row := range rows {
		for j := 0; j < cols; j++ {
			d := row[j] - mean[j]
			std[j] += d * d
		}
	}
	for j := 0; j < cols; j++ {
		std[j] = math.Sqrt(std[j] / float64(len(rows)))
		if std[j] == 0 {
			std[j] = 1
		}
	}

	s.Mean = mean
	s.Std = std
	return nil
}

// Transform áp dụng phép chuẩn hóa đã học lên một hàng dữ liệu
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j := range row {
		out[j] = (row[j] - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll áp dụng phép chuẩn hóa lên toàn bộ các hàng
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
