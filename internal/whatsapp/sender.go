// Giao diện gửi tin nhắn WhatsApp, tách khỏi nhà cung cấp cụ thể để test được

package whatsapp

import "context"

// SendReceipt là biên nhận của nhà cung cấp cho một tin nhắn đã nhận gửi
type SendReceipt struct {
	MessageID string
	Status    string
}

// Sender gửi một tin nhắn tới một địa chỉ whatsapp:<E.164> duy nhất.
// Mỗi lời gọi là một round trip chặn tới nhà cung cấp
type Sender interface {
	Send(ctx context.Context, from, to, body string) (*SendReceipt, error)
}
