// Gói phone chuẩn hoá số điện thoại người dùng nhập về định dạng E.164.
// Thứ tự thử parse là một lựa chọn chính sách: số trần 10 chữ số bắt đầu
// bằng 6-9 được ưu tiên coi là số Ấn Độ (+91) trước khi thử các mã quốc
// gia khác. Đây là bias theo tập khách hàng hiện tại, không phải quy tắc
// chung cho mọi triển khai.

package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region used for the first region-hinted parse.
const DefaultRegion = "US"

// Mã quốc gia thử lần lượt cho số trần 10 chữ số, theo thứ tự ưu tiên.
var countryCodeCandidates = []string{"+91", "+1", "+44", "+61", "+49"}

// Vùng fallback cuối cùng, thử theo đúng thứ tự này.
var fallbackRegions = []string{"IN", "GB", "AU", "CA", "DE", "FR", "IT", "ES", "BR", "MX"}

var sanitizer = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Normalize maps a raw user-supplied phone string to E.164. The second
// return value is false when no parse attempt produced a valid number.
func Normalize(raw string) (string, bool) {
	return NormalizeWithRegion(raw, DefaultRegion)
}

// NormalizeWithRegion behaves like Normalize with an explicit default
// region for the region-hinted parse step.
func NormalizeWithRegion(raw string, defaultRegion string) (string, bool) {
	number := sanitizer.Replace(strings.TrimSpace(raw))
	if number == "" {
		return "", false
	}

	// Số đã có prefix + thì coi như định dạng quốc tế
	if strings.HasPrefix(number, "+") {
		if formatted, ok := tryParse(number, ""); ok {
			return formatted, true
		}
	}

	// Thử với vùng mặc định trước
	if formatted, ok := tryParse(number, defaultRegion); ok {
		return formatted, true
	}

	if len(number) == 10 && isDigits(number) {
		// Số 10 chữ số bắt đầu 6-9: thử Ấn Độ trước
		if number[0] >= '6' && number[0] <= '9' {
			if formatted, ok := tryParse("+91"+number, ""); ok {
				return formatted, true
			}
		}

		// Thử lần lượt các mã quốc gia phổ biến
		for _, code := range countryCodeCandidates {
			if formatted, ok := tryParse(code+number, ""); ok {
				return formatted, true
			}
		}

		if formatted, ok := tryParse(number, "IN"); ok {
			return formatted, true
		}
	}

	for _, region := range fallbackRegions {
		if formatted, ok := tryParse(number, region); ok {
			return formatted, true
		}
	}

	return "", false
}

func tryParse(number string, region string) (string, bool) {
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
