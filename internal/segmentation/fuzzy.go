// Hệ thống suy luận mờ Mamdani cho điểm phân khúc khuyến mãi
// Các hàm thành viên và luật được cố định, chỉ đọc sau khi khởi tạo package

package segmentation

// Trimf là hàm thành viên tam giác với ba đỉnh A <= B <= C.
// A == B hoặc B == C tạo thành hàm dạng vai (shoulder) ở biên miền giá trị
type Trimf struct {
	A, B, C float64
}

// Membership tính độ thuộc của x vào tập mờ, kết quả trong [0, 1]
func (t Trimf) Membership(x float64) float64 {
	if x < t.A || x > t.C {
		return 0
	}
	if x == t.B {
		return 1
	}
	if x < t.B {
		return (x - t.A) / (t.B - t.A)
	}
	return (t.C - x) / (t.C - t.B)
}

// Chỉ số các thuộc tính đầu vào của hệ suy luận và của mô hình phân cụm
const (
	featTotalSpent = iota
	featIntentScore
	featTouchpointsCount
	featRecency
	numFeatures
)

// Miền giá trị của từng thuộc tính, giá trị ngoài miền được cắt về biên
type universe struct {
	min, max float64
}

func (u universe) clip(x float64) float64 {
	if x < u.min {
		return u.min
	}
	if x > u.max {
		return u.max
	}
	return x
}

var featureUniverses = [numFeatures]universe{
	featTotalSpent:       {0, 5000},
	featIntentScore:      {0, 1},
	featTouchpointsCount: {0, 20},
	featRecency:          {0, 800},
}

// Các thuật ngữ ngôn ngữ của từng thuộc tính đầu vào
var (
	spentLow    = Trimf{0, 0, 1500}
	spentMedium = Trimf{1000, 2500, 4000}
	spentHigh   = Trimf{3500, 5000, 5000}

	intentWeak     = Trimf{0, 0, 0.5}
	intentModerate = Trimf{0.3, 0.6, 0.9}
	intentStrong   = Trimf{0.7, 1, 1}

	touchLow    = Trimf{0, 0, 7}
	touchMedium = Trimf{5, 12, 18}
	touchHigh   = Trimf{15, 20, 20}

	recencyRecent   = Trimf{0, 0, 200}
	recencyModerate = Trimf{150, 400, 650}
	recencyDistant  = Trimf{600, 800, 800}
)

// Các tập mờ đầu ra trên miền điểm khuyến mãi [0, 10]
var (
	segmentNurture   = Trimf{0, 0, 4}
	segmentHighValue = Trimf{3, 6, 9}
	segmentReEngage  = Trimf{7, 10, 10}
)

// Miền đầu ra được lấy mẫu tại các điểm nguyên 0..10 khi giải mờ
const (
	outputUniverseMax = 10
	outputSampleStep  = 1.0
	outputSampleCount = outputUniverseMax + 1
)

type condition struct {
	feature int
	term    Trimf
}

type fuzzyRule struct {
	when []condition
	then Trimf
}

// Bộ luật suy luận, các mệnh đề điều kiện kết hợp bằng AND (min)
var promotionalRules = []fuzzyRule{
	{
		when: []condition{{featTotalSpent, spentHigh}, {featIntentScore, intentStrong}, {featRecency, recencyRecent}},
		then: segmentHighValue,
	},
	{
		when: []condition{{featTotalSpent, spentLow}, {featRecency, recencyDistant}},
		then: segmentReEngage,
	},
	{
		when: []condition{{featTotalSpent, spentLow}, {featIntentScore, intentWeak}, {featRecency, recencyRecent}, {featTouchpointsCount, touchLow}},
		then: segmentNurture,
	},
	{
		when: []condition{{featTotalSpent, spentMedium}, {featIntentScore, intentModerate}, {featRecency, recencyModerate}},
		then: segmentHighValue,
	},
	{
		when: []condition{{featRecency, recencyDistant}, {featTouchpointsCount, touchLow}},
		then: segmentReEngage,
	},
	{
		when: []condition{{featIntentScore, intentStrong}, {featTouchpointsCount, touchHigh}},
		then: segmentHighValue,
	},
}

// Ngưỡng ánh xạ điểm khuyến mãi sang nhãn phân khúc
var promotionalBins = [4]float64{0, 4.5, 7.5, 10}

// Nhãn phân khúc khuyến mãi
const (
	CategoryNewCustomerNurture  = "New Customer Nurture"
	CategoryHighValueEngagement = "High Value Engagement"
	CategoryReEngagement        = "Re-engagement"
	CategoryUnknown             = "Unknown"
)

// InferPromotionalSegment chạy suy luận mờ trên bốn thuộc tính thô của khách hàng
// và trả về điểm phân khúc trong [0, 10]. Trả về ok = false khi không luật nào
// được kích hoạt và trọng tâm không xác định
func InferPromotionalSegment(totalSpent, intentScore, touchpointsCount, recency float64) (score float64, ok bool) {
	inputs := [numFeatures]float64{
		featTotalSpent:       featureUniverses[featTotalSpent].clip(totalSpent),
		featIntentScore:      featureUniverses[featIntentScore].clip(intentScore),
		featTouchpointsCount: featureUniverses[featTouchpointsCount].clip(touchpointsCount),
		featRecency:          featureUniverses[featRecency].clip(recency),
	}

	// Độ kích hoạt của mỗi luật là min độ thuộc của các mệnh đề điều kiện
	activations := make([]float64, len(promotionalRules))
	fired := false
	for i, rule := range promotionalRules {
		w := 1.0
		for _, cond := range rule.when {
			m := cond.term.Membership(inputs[cond.feature])
			if m < w {
				w = m
			}
		}
		activations[i] = w
		if w > 0 {
			fired = true
		}
	}
	if !fired {
		return 0, false
	}

	// Tổng hợp bằng max các tập đầu ra đã bị cắt theo độ kích hoạt,
	// lấy mẫu trên miền đầu ra rồi giải mờ bằng trọng tâm
	var xs, ys [outputSampleCount]float64
	for j := 0; j < outputSampleCount; j++ {
		x := float64(j) * outputSampleStep
		xs[j] = x
		for i, rule := range promotionalRules {
			m := rule.then.Membership(x)
			if activations[i] < m {
				m = activations[i]
			}
			if m > ys[j] {
				ys[j] = m
			}
		}
	}
	return centroid(xs[:], ys[:])
}

// centroid tính trọng tâm hình học của đường gấp khúc (xs, ys).
// Trả về ok = false khi diện tích bằng 0 (không có tập mờ nào được kích hoạt)
func centroid(xs, ys []float64) (float64, bool) {
	var sumArea, sumMoment float64
	for i := 1; i < len(xs); i++ {
		x1, x2 := xs[i-1], xs[i]
		y1, y2 := ys[i-1], ys[i]
		if x1 == x2 || y1+y2 == 0 {
			continue
		}
		area := 0.5 * (x2 - x1) * (y1 + y2)
		cx := x1 + (x2-x1)*(y1+2*y2)/(3*(y1+y2))
		sumArea += area
		sumMoment += cx * area
	}
	if sumArea == 0 {
		return 0, false
	}
	return sumMoment / sumArea, true
}

// CategoryForScore ánh xạ điểm đã giải mờ sang nhãn phân khúc theo ngưỡng cố định
func CategoryForScore(score float64) string {
	switch {
	case score >= promotionalBins[0] && score < promotionalBins[1]:
		return CategoryNewCustomerNurture
	case score >= promotionalBins[1] && score < promotionalBins[2]:
		return CategoryHighValueEngagement
	case score >= promotionalBins[2] && score <= promotionalBins[3]:
		return CategoryReEngagement
	default:
		return CategoryUnknown
	}
}
