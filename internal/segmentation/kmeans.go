// Phân cụm k-means với khởi tạo k-means++ và seed cố định
// để kết quả gán cụm lặp lại được giữa các lần chạy

package segmentation

import (
	"fmt"
	"math"
	"math/rand"
)

type KMeans struct {
	K         int
	MaxIter   int
	Seed      int64
	Centroids [][]float64
}

func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{
		K:       k,
		MaxIter: 300,
		Seed:    seed,
	}
}

// Fit chạy thuật toán Lloyd trên dữ liệu đã được chuẩn hóa
func (km *KMeans) Fit(rows [][]float64) error {
	if len(rows) < km.K {
		return fmt.Errorf("need at least %d samples to fit %d clusters, got %d", km.K, km.K, len(rows))
	}

	rng := rand.New(rand.NewSource(km.Seed))
	centroids := km.seedCentroids(rows, rng)
	assignments := make([]int, len(rows))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < km.MaxIter; iter++ {
		changed := false
		for i, row := range rows {
			c := nearestCentroid(row, centroids)
			if assignments[i] != c {
				assignments[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		recomputeCentroids(rows, assignments, centroids)
	}

	km.Centroids = centroids
	return nil
}

// Predict trả về chỉ số cụm có tâm gần nhất theo khoảng cách Euclid
func (km *KMeans) Predict(row []float64) int {
	return nearestCentroid(row, km.Centroids)
}

// Khởi tạo tâm cụm theo k-means++: tâm đầu tiên chọn ngẫu nhiên,
// các tâm sau chọn với xác suất tỉ lệ với bình phương khoảng cách
// tới tâm gần nhất đã chọn
func (km *KMeans) seedCentroids(rows [][]float64, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, km.K)
	first := rows[rng.Intn(len(rows))]
	centroids = append(centroids, cloneRow(first))

	dists := make([]float64, len(rows))
	for len(centroids) < km.K {
		var total float64
		for i, row := range rows {
			d := squaredDistance(row, centroids[len(centroids)-1])
			if len(centroids) == 1 || d < dists[i] {
				dists[i] = d
			}
			total += dists[i]
		}
		if total == 0 {
			// Mọi điểm trùng với tâm đã chọn, lấy tuần tự các điểm còn lại
			centroids = append(centroids, cloneRow(rows[len(centroids)%len(rows)]))
			continue
		}
		r := rng.Float64() * total
		var cum float64
		picked := len(rows) - 1
		for i := range rows {
			cum += dists[i]
			if cum > r {
				picked = i
				break
			}
		}
		centroids = append(centroids, cloneRow(rows[picked]))
	}
	return centroids
}

func recomputeCentroids(rows [][]float64, assignments []int, centroids [][]float64) {
	cols := len(rows[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, cols)
	}
	for i, row := range rows {
		c := assignments[i]
		counts[c]++
		for j, v := range row {
			sums[c][j] += v
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			// Cụm rỗng giữ nguyên tâm cũ
			continue
		}
		for j := 0; j < cols; j++ {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		if d := squaredDistance(row, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
