// Sender cài đặt trên Twilio REST API

package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// ErrTwilioNotConfigured trả về khi thiếu thông tin xác thực Twilio
var ErrTwilioNotConfigured = errors.New("Twilio is not configured. Please set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_WHATSAPP_FROM environment variables.")

type TwilioSender struct {
	Logger log.Logger
	Config *cfg.Config
	client *twilio.RestClient
}

func NewTwilioSender(logger log.Logger, config *cfg.Config) (*TwilioSender, error) {
	if config.Twilio.AccountSid == "" || config.Twilio.AuthToken == "" {
		return nil, ErrTwilioNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.Twilio.AccountSid,
		Password: config.Twilio.AuthToken,
	})
	return &TwilioSender{
		Logger: logger,
		Config: config,
		client: client,
	}, nil
}

func (s *TwilioSender) Send(ctx context.Context, from, to, body string) (*SendReceipt, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("twilio send to %s failed: %w", to, err)
	}

	receipt := &SendReceipt{}
	if msg.Sid != nil {
		receipt.MessageID = *msg.Sid
	}
	if msg.Status != nil {
		receipt.Status = *msg.Status
	}
	s.Logger.Info(ctx, "WhatsApp sent to %s, sid=%s, status=%s", to, receipt.MessageID, receipt.Status)
	return receipt, nil
}
