package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

const (
	verifyChannelSMS = "sms"
	statusApproved   = "approved"
)

// verifyAPI подмножество клиента Twilio Verify, которое нам нужно.
type verifyAPI interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// TwilioVerify реализует Provider через Twilio Verify API.
type TwilioVerify struct {
	api        verifyAPI
	serviceSID string
}

// NewTwilioVerify создаёт провайдера с таймаутом HTTP запросов.
func NewTwilioVerify(accountSID, authToken, serviceSID string, timeout time.Duration) *TwilioVerify {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &TwilioVerify{
		api:        client.VerifyV2,
		serviceSID: serviceSID,
	}
}

// SendCode запрашивает отправку кода по SMS.
func (t *TwilioVerify) SendCode(ctx context.Context, phone string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := &verify.CreateVerificationParams{}
	params.SetTo(e164(phone))
	params.SetChannel(verifyChannelSMS)

	if _, err := t.api.CreateVerification(t.serviceSID, params); err != nil {
		return classify("send code", err)
	}
	return nil
}

// CheckCode проверяет код. Неверный код даёт false без ошибки.
func (t *TwilioVerify) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(e164(phone))
	params.SetCode(code)

	resp, err := t.api.CreateVerificationCheck(t.serviceSID, params)
	if err != nil {
		return false, classify("check code", err)
	}
	if resp == nil || resp.Status == nil {
		return false, nil
	}
	return *resp.Status == statusApproved, nil
}

// classify отделяет ошибки входных данных (4xx) от недоступности провайдера.
func classify(op string, err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) && restErr.Status >= 400 && restErr.Status < 500 {
		return fmt.Errorf("%w: twilio %s: %d %s", ErrRejected, op, restErr.Code, restErr.Message)
	}
	return fmt.Errorf("%w: twilio %s: %v", ErrUnavailable, op, err)
}

func e164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
