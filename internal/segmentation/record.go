// Bản ghi khách hàng đọc từ file CSV tải lên và các bước tiền xử lý:
// điền giá trị mặc định cho thuộc tính thiếu và suy ra recency theo lô

package segmentation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Giá trị mặc định khi thuộc tính phân cụm không có trong dữ liệu
const (
	defaultIntentScore      = 0.5
	defaultTouchpointsCount = 0
	defaultTotalSpent       = 0

	// Recency dự phòng khi không bản ghi nào có ngày mua
	fallbackMaxRecency = 1000
	// Phần cộng thêm cho bản ghi thiếu ngày mua so với recency lớn nhất của lô
	missingRecencyOffset = 30
)

// Tên các cột được nhận diện trong file CSV
const (
	colTotalSpent       = "total_spent"
	colIntentScore      = "intent_score"
	colTouchpointsCount = "touchpoints_count"
	colLastPurchaseDate = "last_purchase_date"
)

// Các định dạng ngày được chấp nhận cho cột last_purchase_date
var purchaseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// CustomerRecord là một hàng dữ liệu khách hàng. Fields giữ nguyên mọi cột gốc
// của file tải lên để trả lại trong kết quả, các thuộc tính phân cụm được
// tách riêng sau khi đã điền giá trị mặc định
type CustomerRecord struct {
	Fields map[string]any

	TotalSpent       float64
	IntentScore      float64
	TouchpointsCount float64
	LastPurchaseDate time.Time
	HasPurchaseDate  bool

	// Recency chỉ có nghĩa sau khi gọi DeriveRecency trên cả lô
	Recency float64
}

// FeatureVector trả về bốn thuộc tính phân cụm theo thứ tự cố định của mô hình
func (r *CustomerRecord) FeatureVector() []float64 {
	out := make([]float64, numFeatures)
	out[featTotalSpent] = r.TotalSpent
	out[featIntentScore] = r.IntentScore
	out[featTouchpointsCount] = r.TouchpointsCount
	out[featRecency] = r.Recency
	return out
}

// ParseCustomerCSV đọc file CSV có dòng tiêu đề thành các bản ghi khách hàng.
// Cột nào mà mọi ô không rỗng đều là số thì được giữ dạng số trong Fields,
// ô rỗng trở thành nil, còn lại giữ nguyên chuỗi
func ParseCustomerCSV(r io.Reader) ([]*CustomerRecord, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var raw [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		raw = append(raw, row)
	}
	if len(raw) == 0 {
		return nil, errors.New("CSV file has no data rows")
	}

	numericCol := detectNumericColumns(header, raw)
	records := make([]*CustomerRecord, 0, len(raw))
	for _, row := range raw {
		rec := &CustomerRecord{Fields: make(map[string]any, len(header))}
		for j, name := range header {
			cell := strings.TrimSpace(row[j])
			switch {
			case cell == "":
				rec.Fields[name] = nil
			case numericCol[name]:
				v, _ := strconv.ParseFloat(cell, 64)
				rec.Fields[name] = v
			default:
				rec.Fields[name] = cell
			}
		}
		fillClusteringFeatures(rec)
		records = append(records, rec)
	}
	return records, nil
}

// Cột được coi là số khi mọi ô không rỗng của nó đều parse được thành float
func detectNumericColumns(header []string, rows [][]string) map[string]bool {
	numeric := make(map[string]bool, len(header))
	for j, name := range header {
		hasValue := false
		ok := true
		for _, row := range rows {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				continue
			}
			hasValue = true
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				ok = false
				break
			}
		}
		numeric[name] = ok && hasValue
	}
	return numeric
}

// Điền các thuộc tính phân cụm từ Fields, thiếu thì dùng giá trị mặc định
func fillClusteringFeatures(rec *CustomerRecord) {
	rec.TotalSpent = numericField(rec.Fields, colTotalSpent, defaultTotalSpent)
	rec.IntentScore = numericField(rec.Fields, colIntentScore, defaultIntentScore)
	rec.TouchpointsCount = numericField(rec.Fields, colTouchpointsCount, defaultTouchpointsCount)

	if v, ok := rec.Fields[colLastPurchaseDate]; ok && v != nil {
		if s, isStr := v.(string); isStr {
			if t, ok := parsePurchaseDate(s); ok {
				rec.LastPurchaseDate = t
				rec.HasPurchaseDate = true
			}
		}
	}
}

func numericField(fields map[string]any, name string, fallback float64) float64 {
	v, ok := fields[name]
	if !ok || v == nil {
		return fallback
	}
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	return f
}

func parsePurchaseDate(s string) (time.Time, bool) {
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DeriveRecency tính recency (số ngày từ lần mua gần nhất tới now) cho cả lô.
// Bản ghi không có ngày mua nhận recency lớn nhất của lô cộng thêm một khoảng
// cố định để luôn xa hơn mọi khách còn hoạt động
func DeriveRecency(records []*CustomerRecord, now time.Time) {
	maxRecency := math.NaN()
	for _, rec := range records {
		if !rec.HasPurchaseDate {
			continue
		}
		rec.Recency = math.Floor(now.Sub(rec.LastPurchaseDate).Hours() / 24)
		if math.IsNaN(maxRecency) || rec.Recency > maxRecency {
			maxRecency = rec.Recency
		}
	}
	if math.IsNaN(maxRecency) {
		maxRecency = fallbackMaxRecency
	}
	for _, rec := range records {
		if !rec.HasPurchaseDate {
			rec.Recency = maxRecency + missingRecencyOffset
		}
	}
}
