package segmentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/pkg/log"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	logger, err := log.NewCslLogger()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	mockLoader, err := cfg.NewMockLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	config, err := mockLoader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	pipeline, err := NewPipeline(logger, config)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	return pipeline
}

func trainingBatch(now time.Time) []*CustomerRecord {
	mk := func(spent, intent, touch float64, daysAgo int) *CustomerRecord {
		return &CustomerRecord{
			Fields:           map[string]any{},
			TotalSpent:       spent,
			IntentScore:      intent,
			TouchpointsCount: touch,
			LastPurchaseDate: now.AddDate(0, 0, -daysAgo),
			HasPurchaseDate:  true,
		}
	}
	return []*CustomerRecord{
		mk(100, 0.1, 1, 5),
		mk(250, 0.15, 2, 15),
		mk(2400, 0.55, 11, 380),
		mk(2600, 0.6, 12, 420),
		mk(4700, 0.9, 17, 8),
		mk(4900, 0.95, 19, 12),
		mk(300, 0.2, 1, 700),
		mk(450, 0.1, 2, 750),
	}
}

func TestClassifyBeforeInitializeFails(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Classify(context.Background(), trainingBatch(time.Now()))
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeThenClassify(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	now := time.Now()

	if err := p.Initialize(ctx, trainingBatch(now)); err != nil {
		t.Fatalf("unexpected initialize error: %v", err)
	}
	if !p.Initialized() {
		t.Fatal("pipeline should report initialized")
	}

	batch := []*CustomerRecord{
		{
			Fields:           map[string]any{},
			TotalSpent:       4800,
			IntentScore:      0.95,
			TouchpointsCount: 18,
			LastPurchaseDate: now.AddDate(0, 0, -10),
			HasPurchaseDate:  true,
		},
	}
	results, err := p.Classify(ctx, batch)
	if err != nil {
		t.Fatalf("unexpected classify error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	res := results[0]
	if !res.HasScore {
		t.Fatal("expected a defined promotional segment score")
	}
	if res.Category != CategoryHighValueEngagement {
		t.Fatalf("expected category %q, got %q (score %v)", CategoryHighValueEngagement, res.Category, res.Score)
	}
	if res.Cluster < 0 || res.Cluster >= clusterCount {
		t.Fatalf("cluster label out of range: %d", res.Cluster)
	}
}

func TestClassifyMarksUnknownPerRecord(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	now := time.Now()

	if err := p.Initialize(ctx, trainingBatch(now)); err != nil {
		t.Fatalf("unexpected initialize error: %v", err)
	}

	batch := []*CustomerRecord{
		// Không luật mờ nào bao phủ tổ hợp thuộc tính này
		{
			Fields:           map[string]any{},
			TotalSpent:       2500,
			IntentScore:      0.1,
			TouchpointsCount: 10,
			LastPurchaseDate: now.AddDate(0, 0, -400),
			HasPurchaseDate:  true,
		},
		{
			Fields:           map[string]any{},
			TotalSpent:       4800,
			IntentScore:      0.95,
			TouchpointsCount: 18,
			LastPurchaseDate: now.AddDate(0, 0, -10),
			HasPurchaseDate:  true,
		},
	}
	results, err := p.Classify(ctx, batch)
	if err != nil {
		t.Fatalf("unexpected classify error: %v", err)
	}

	if results[0].HasScore || results[0].Category != CategoryUnknown {
		t.Fatalf("expected unknown category without score, got %+v", results[0])
	}
	if results[0].Cluster < 0 || results[0].Cluster >= clusterCount {
		t.Fatalf("cluster label should still be assigned, got %d", results[0].Cluster)
	}
	if results[1].Category != CategoryHighValueEngagement {
		t.Fatalf("second record should classify normally, got %+v", results[1])
	}
}

func TestInitializeRejectsDegenerateBatches(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	if err := p.Initialize(ctx, nil); err == nil {
		t.Fatal("expected error for empty training batch")
	}
	small := trainingBatch(time.Now())[:2]
	if err := p.Initialize(ctx, small); err == nil {
		t.Fatal("expected error fitting 4 clusters on 2 records")
	}
	if p.Initialized() {
		t.Fatal("failed initialization must not mark the pipeline initialized")
	}
}
