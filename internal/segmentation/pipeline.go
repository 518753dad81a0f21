// Pipeline phân khúc khách hàng hai giai đoạn:
// suy luận mờ trên thuộc tính thô và gán cụm k-means trên thuộc tính đã chuẩn hóa.
// Mô hình được huấn luyện một lần rồi đóng băng trong suốt vòng đời process

package segmentation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// Tham số mô hình phân cụm, cố định theo mô hình gốc đã huấn luyện
const (
	clusterCount = 4
	kmeansSeed   = 42
)

// ErrNotInitialized trả về khi phân loại trước lúc mô hình được khởi tạo
var ErrNotInitialized = errors.New("segmentation models are not initialized")

// SegmentResult là kết quả phân loại của một bản ghi khách hàng
type SegmentResult struct {
	Score    float64
	HasScore bool
	Category string
	Cluster  int
}

type Pipeline struct {
	Logger log.Logger
	Config *cfg.Config

	mu          sync.Mutex
	scaler      *StandardScaler
	kmeans      *KMeans
	initialized bool
}

func NewPipeline(logger log.Logger, config *cfg.Config) (*Pipeline, error) {
	return &Pipeline{
		Logger: logger,
		Config: config,
	}, nil
}

// Initialized cho biết mô hình đã được huấn luyện hay chưa
func (p *Pipeline) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Initialize huấn luyện scaler và k-means trên lô dữ liệu tham chiếu.
// Sau khi thành công, tham số mô hình bị đóng băng cho tới khi được gọi lại
func (p *Pipeline) Initialize(ctx context.Context, records []*CustomerRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(records) == 0 {
		return errors.New("training batch is empty")
	}

	DeriveRecency(records, time.Now())
	features := make([][]float64, len(records))
	for i, rec := range records {
		features[i] = rec.FeatureVector()
	}

	scaler := NewStandardScaler()
	if err := scaler.Fit(features); err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}

	kmeans := NewKMeans(clusterCount, kmeansSeed)
	if err := kmeans.Fit(scaler.TransformAll(features)); err != nil {
		return fmt.Errorf("failed to fit k-means: %w", err)
	}

	p.scaler = scaler
	p.kmeans = kmeans
	p.initialized = true
	p.Logger.Info(ctx, "Segmentation models initialized with %d records", len(records))
	return nil
}

// Classify phân loại một lô bản ghi bằng mô hình đã đóng băng.
// Lỗi suy luận mờ chỉ ảnh hưởng tới từng bản ghi, không làm hỏng cả lô
func (p *Pipeline) Classify(ctx context.Context, records []*CustomerRecord) ([]SegmentResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, ErrNotInitialized
	}

	DeriveRecency(records, time.Now())
	results := make([]SegmentResult, len(records))
	for i, rec := range records {
		result := SegmentResult{Category: CategoryUnknown, Cluster: -1}

		score, ok := InferPromotionalSegment(rec.TotalSpent, rec.IntentScore, rec.TouchpointsCount, rec.Recency)
		if ok {
			result.Score = score
			result.HasScore = true
			result.Category = CategoryForScore(score)
		} else {
			p.Logger.Warn(ctx, "No fuzzy rule fired for record %d, category set to %s", i, CategoryUnknown)
		}

		result.Cluster = p.kmeans.Predict(p.scaler.Transform(rec.FeatureVector()))
		results[i] = result
	}
	return results, nil
}
