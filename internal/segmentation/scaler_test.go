package segmentation

import (
	"math"
	"testing"
)

func TestScalerFitTransform(t *testing.T) {
	s := NewStandardScaler()
	rows := [][]float64{
		{1, 10},
		{3, 20},
		{5, 30},
	}
	if err := s.Fit(rows); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}

	if math.Abs(s.Mean[0]-3) > 1e-12 || math.Abs(s.Mean[1]-20) > 1e-12 {
		t.Fatalf("unexpected means: %v", s.Mean)
	}
	// Độ lệch chuẩn tổng thể, không phải mẫu
	wantStd0 := math.Sqrt(8.0 / 3.0)
	if math.Abs(s.Std[0]-wantStd0) > 1e-12 {
		t.Fatalf("expected population std %v, got %v", wantStd0, s.Std[0])
	}

	got := s.Transform([]float64{3, 20})
	if math.Abs(got[0]) > 1e-12 || math.Abs(got[1]) > 1e-12 {
		t.Fatalf("mean row should transform to zeros, got %v", got)
	}
}

func TestScalerZeroVarianceColumn(t *testing.T) {
	s := NewStandardScaler()
	rows := [][]float64{
		{7, 1},
		{7, 2},
		{7, 3},
	}
	if err := s.Fit(rows); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	if s.Std[0] != 1 {
		t.Fatalf("zero-variance column should keep std 1, got %v", s.Std[0])
	}
	got := s.Transform([]float64{7, 2})
	if got[0] != 0 {
		t.Fatalf("constant column should center to 0, got %v", got[0])
	}
}

func TestScalerEmptyData(t *testing.T) {
	s := NewStandardScaler()
	if err := s.Fit(nil); err == nil {
		t.Fatal("expected error fitting on empty data")
	}
}
