package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/config"
)

type verificationCreator interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
}

// TwilioNotifier delivers verification codes through Twilio Verify's email
// channel, passing our own code so it can still be checked locally. Messages
// without a code have no Twilio equivalent and are skipped.
type TwilioNotifier struct {
	verify     verificationCreator
	serviceSID string
	log        *zap.Logger
}

func NewTwilioNotifier(cfg config.Config, log *zap.Logger) (*TwilioNotifier, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioVerifyServiceSID == "" {
		return nil, errors.New("twilio provider needs TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_VERIFY_SERVICE_SID")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioNotifier{verify: client.VerifyV2, serviceSID: cfg.TwilioVerifyServiceSID, log: log}, nil
}

func (n *TwilioNotifier) Send(_ context.Context, msg Message) error {
	if msg.Code == "" {
		n.log.Debug("twilio: no code in message, skipping", zap.String("kind", string(msg.Kind)))
		return nil
	}

	params := &verify.CreateVerificationParams{}
	params.SetTo(msg.To)
	params.SetChannel("email")
	params.SetCustomCode(msg.Code)

	resp, err := n.verify.CreateVerification(n.serviceSID, params)
	if err != nil {
		return fmt.Errorf("twilio create verification: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		n.log.Info("twilio verification sent", zap.String("sid", *resp.Sid))
	}
	return nil
}
