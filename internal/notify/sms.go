package notify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"buy-bye-api-server/config"
)

type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender returns a Twilio-backed sender. Without credentials it runs
// in simulation mode and only logs the message, so local environments work
// without an account.
func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return &SMSSender{from: cfg.FromNumber}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSSender{client: client, from: cfg.FromNumber}
}

// SendSMS delivers one message to the given number.
func (s *SMSSender) SendSMS(to, message string) error {
	if !strings.HasPrefix(to, "+") {
		to = "+" + to
	}

	if s.client == nil {
		logrus.Infof("[SMS SIMULATION] From: %s, To: %s, Message: %s", s.from, to, message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	return nil
}

// SendVerificationCode delivers the phone-verification OTP.
func (s *SMSSender) SendVerificationCode(to, code string) error {
	return s.SendSMS(to, fmt.Sprintf("Your verification code is: %s. This code will expire in 10 minutes.", code))
}
