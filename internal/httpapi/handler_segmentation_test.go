package httpapi

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// customersCSV builds a batch with known fuzzy outcomes: c1 matches the
// high-value rules, c2 the re-engagement rules, c3 fires no rule at all,
// c7 is missing its intent score and c8 its purchase date
func customersCSV() string {
	now := time.Now()
	day := func(n int) string {
		return now.AddDate(0, 0, -n).Format("2006-01-02")
	}
	rows := []string{
		"customer_id,name,total_spent,intent_score,touchpoints_count,last_purchase_date",
		"c1,Alice,4800,0.95,18," + day(10),
		"c2,Bob,500,0.2,2," + day(700),
		"c3,Carol,2500,0.1,10," + day(400),
		"c4,Dave,3200,0.7,12," + day(60),
		"c5,Eve,150,0.3,1," + day(200),
		"c6,Frank,4200,0.85,15," + day(20),
		"c7,Grace,900,,5," + day(90),
		"c8,Heidi,1200,0.6,7,",
	}
	return strings.Join(rows, "\n") + "\n"
}

func doUpload(t *testing.T, router *mux.Router, path, csvBody string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "customers.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvBody)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func findRow(t *testing.T, rows []map[string]interface{}, customerID string) map[string]interface{} {
	t.Helper()
	for _, row := range rows {
		if row["customer_id"] == customerID {
			return row
		}
	}
	t.Fatalf("no row for customer %s", customerID)
	return nil
}

func TestSegmentationInitialize(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doUpload(t, router, "/segmentation/initialize", customersCSV())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeMap(t, rec)
	if got["status"] != "success" {
		t.Errorf("expected status success, got %v", got["status"])
	}
	if got["message"] != "Segmentation models initialized successfully" {
		t.Errorf("unexpected message: %v", got["message"])
	}
	if got["rows_trained"] != float64(8) {
		t.Errorf("expected 8 rows trained, got %v", got["rows_trained"])
	}
}

func TestSegmentationAutoInitializesAndClassifies(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doUpload(t, router, "/segmentation", customersCSV())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}

	alice := findRow(t, rows, "c1")
	if alice["name"] != "Alice" {
		t.Errorf("original columns should be preserved, got name=%v", alice["name"])
	}
	if alice["total_spent"] != float64(4800) {
		t.Errorf("expected total_spent 4800, got %v", alice["total_spent"])
	}
	if alice["recency"] != float64(10) {
		t.Errorf("expected recency 10, got %v", alice["recency"])
	}
	if alice["promotional_segment_category"] != "High Value Engagement" {
		t.Errorf("expected High Value Engagement, got %v", alice["promotional_segment_category"])
	}
	score, ok := alice["promotional_segment_score"].(float64)
	if !ok || math.Abs(score-6.0) > 1e-6 {
		t.Errorf("expected score 6.0, got %v", alice["promotional_segment_score"])
	}
	cluster, ok := alice["cluster_label"].(float64)
	if !ok || cluster < 0 || cluster > 3 {
		t.Errorf("expected cluster label in [0,3], got %v", alice["cluster_label"])
	}

	bob := findRow(t, rows, "c2")
	if bob["promotional_segment_category"] != "Re-engagement" {
		t.Errorf("expected Re-engagement, got %v", bob["promotional_segment_category"])
	}

	carol := findRow(t, rows, "c3")
	if carol["promotional_segment_category"] != "Unknown" {
		t.Errorf("expected Unknown when no rule fires, got %v", carol["promotional_segment_category"])
	}
	if carol["promotional_segment_score"] != nil {
		t.Errorf("expected null score when no rule fires, got %v", carol["promotional_segment_score"])
	}

	grace := findRow(t, rows, "c7")
	if grace["intent_score"] != float64(0.5) {
		t.Errorf("missing intent score should default to 0.5, got %v", grace["intent_score"])
	}

	heidi := findRow(t, rows, "c8")
	if heidi["recency"] != float64(730) {
		t.Errorf("missing purchase date should get max recency plus 30, got %v", heidi["recency"])
	}
}

func TestSegmentationReusesTrainedModels(t *testing.T) {
	router := newTestRouter(t, nil)
	if rec := doUpload(t, router, "/segmentation/initialize", customersCSV()); rec.Code != http.StatusOK {
		t.Fatalf("initialize failed: %d %s", rec.Code, rec.Body.String())
	}

	// A smaller batch than the cluster count classifies fine once trained
	small := "customer_id,total_spent,intent_score,touchpoints_count,last_purchase_date\n" +
		"x1,4800,0.95,18," + time.Now().AddDate(0, 0, -10).Format("2006-01-02") + "\n"
	rec := doUpload(t, router, "/segmentation", small)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["promotional_segment_category"] != "High Value Engagement" {
		t.Errorf("expected High Value Engagement, got %v", rows[0]["promotional_segment_category"])
	}
}

func TestSegmentationRequiresFilePart(t *testing.T) {
	router := newTestRouter(t, nil)
	for _, path := range []string{"/segmentation", "/segmentation/initialize"} {
		rec := doJSON(t, router, http.MethodPost, path, `{"rows": []}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
			continue
		}
		if got := decodeMap(t, rec); got["error"] != "No file part in the request" {
			t.Errorf("%s: unexpected error %v", path, got["error"])
		}
	}
}

func TestSegmentationInitializeTooFewRows(t *testing.T) {
	router := newTestRouter(t, nil)
	small := "customer_id,total_spent,intent_score,touchpoints_count,last_purchase_date\n" +
		"x1,100,0.5,1,2024-01-01\n" +
		"x2,200,0.6,2,2024-02-01\n"
	rec := doUpload(t, router, "/segmentation/initialize", small)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeMap(t, rec); got["error"] != "Failed to initialize models" {
		t.Errorf("unexpected error %v", got["error"])
	}
}

func TestSegmentationRejectsEmptyCSV(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doUpload(t, router, "/segmentation", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeMap(t, rec)
	errMsg, ok := got["error"].(string)
	if !ok || !strings.HasPrefix(errMsg, "An internal error occurred:") {
		t.Errorf("unexpected error %v", got["error"])
	}
}
