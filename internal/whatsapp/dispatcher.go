// Bộ điều phối gửi tin nhắn WhatsApp theo lô: xử lý tuần tự từng người nhận,
// lỗi của một người nhận được ghi lại và không làm dừng cả lô

package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/phone"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// Tên hiển thị mặc định khi người nhận không có customerName
const defaultCustomerName = "Customer"

// Recipient là một người nhận với tin nhắn riêng
type Recipient struct {
	Phone        string `json:"phone"`
	Message      string `json:"message"`
	CustomerName string `json:"customerName,omitempty"`
}

// RecipientResult là kết quả gửi cho một người nhận
type RecipientResult struct {
	Phone          string `json:"phone"`
	FormattedPhone string `json:"formattedPhone,omitempty"`
	CustomerName   string `json:"customerName"`
	Success        bool   `json:"success"`
	MessageID      string `json:"messageId,omitempty"`
	Status         string `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// DispatchReport tổng kết một lô gửi theo người nhận
type DispatchReport struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []RecipientResult `json:"results"`
}

// BroadcastDelivery và BroadcastFailure là kết quả của dạng gửi
// một tin nhắn chung tới danh sách số điện thoại
type BroadcastDelivery struct {
	To  string `json:"to"`
	Sid string `json:"sid,omitempty"`
}

type BroadcastFailure struct {
	To    string `json:"to"`
	Error string `json:"error"`
}

type BroadcastReport struct {
	Sent   []BroadcastDelivery `json:"sent"`
	Failed []BroadcastFailure  `json:"failed"`
}

type Dispatcher struct {
	Logger log.Logger
	Config *cfg.Config
	Sender Sender
}

func NewDispatcher(logger log.Logger, config *cfg.Config, sender Sender) (*Dispatcher, error) {
	return &Dispatcher{
		Logger: logger,
		Config: config,
		Sender: sender,
	}, nil
}

// Dispatch gửi tin nhắn riêng cho từng người nhận. Số điện thoại được chuẩn hóa
// về E.164 trước khi gửi, chuẩn hóa thất bại thì người nhận đó bị đánh dấu lỗi
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []Recipient) *DispatchReport {
	from := ensureWhatsappPrefix(d.Config.Twilio.WhatsappFrom)
	report := &DispatchReport{
		Success: true,
		Total:   len(recipients),
		Results: make([]RecipientResult, 0, len(recipients)),
	}

	for i, rec := range recipients {
		d.Logger.Info(ctx, "Processing recipient %d/%d: %s", i+1, len(recipients), rec.Phone)
		name := rec.CustomerName
		if name == "" {
			name = defaultCustomerName
		}
		result := RecipientResult{Phone: rec.Phone, CustomerName: name}

		if rec.Phone == "" || rec.Message == "" {
			result.Error = "Missing phone or message"
			d.Logger.Warn(ctx, "Recipient %d skipped: %s", i+1, result.Error)
			report.Results = append(report.Results, result)
			continue
		}

		formatted, ok := phone.Normalize(rec.Phone)
		if !ok {
			result.Error = fmt.Sprintf("Invalid phone number format: %s", rec.Phone)
			d.Logger.Warn(ctx, "%s", result.Error)
			report.Results = append(report.Results, result)
			continue
		}
		result.FormattedPhone = formatted

		receipt, err := d.Sender.Send(ctx, from, ensureWhatsappPrefix(formatted), rec.Message)
		if err != nil {
			result.Error = err.Error()
			d.Logger.Error(ctx, "Error sending WhatsApp to %s: %v", rec.Phone, err)
			report.Results = append(report.Results, result)
			continue
		}

		result.Success = true
		result.MessageID = receipt.MessageID
		result.Status = receipt.Status
		report.Results = append(report.Results, result)
	}

	for _, r := range report.Results {
		if r.Success {
			report.Sent++
		}
	}
	report.Failed = report.Total - report.Sent
	d.Logger.Info(ctx, "WhatsApp dispatch completed: %d/%d successful", report.Sent, report.Total)
	return report
}

// Broadcast gửi cùng một nội dung tới danh sách số điện thoại. Số được gửi
// nguyên trạng sau khi thêm tiền tố whatsapp:, không qua bước chuẩn hóa
func (d *Dispatcher) Broadcast(ctx context.Context, users []string, body, fromOverride string) *BroadcastReport {
	from := fromOverride
	if from == "" {
		from = d.Config.Twilio.WhatsappFrom
	}
	from = ensureWhatsappPrefix(from)

	report := &BroadcastReport{
		Sent:   make([]BroadcastDelivery, 0, len(users)),
		Failed: make([]BroadcastFailure, 0),
	}
	for _, user := range users {
		to := ensureWhatsappPrefix(user)
		receipt, err := d.Sender.Send(ctx, from, to, body)
		if err != nil {
			d.Logger.Error(ctx, "Failed to send WhatsApp to %s: %v", to, err)
			report.Failed = append(report.Failed, BroadcastFailure{To: to, Error: err.Error()})
			continue
		}
		report.Sent = append(report.Sent, BroadcastDelivery{To: to, Sid: receipt.MessageID})
	}
	return report
}

func ensureWhatsappPrefix(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
