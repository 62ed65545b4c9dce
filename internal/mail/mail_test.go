package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/config"
)

type recorder struct {
	mu   sync.Mutex
	sent []Message
	err  error
	wait chan struct{}
}

func (r *recorder) Send(_ context.Context, msg Message) error {
	if r.wait != nil {
		<-r.wait
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	rec := &recorder{err: errors.New("smtp down")}
	d := NewDispatcher(rec, 8, zap.NewNop())

	assert.True(t, d.Enqueue(Message{Kind: KindWelcome, To: "a@x.io"}))
	assert.True(t, d.Enqueue(Message{Kind: KindVerificationCode, To: "b@x.io"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Len(t, rec.sent, 2)
	assert.False(t, d.Enqueue(Message{To: "late@x.io"}))
	require.NoError(t, d.Close(ctx))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	rec := &recorder{wait: make(chan struct{})}
	d := NewDispatcher(rec, 1, zap.NewNop())

	// The worker takes the first message and blocks on it; the second fills the buffer.
	require.True(t, d.Enqueue(Message{To: "1"}))
	require.Eventually(t, func() bool { return d.Enqueue(Message{To: "2"}) }, time.Second, time.Millisecond)
	assert.False(t, d.Enqueue(Message{To: "3"}))

	close(rec.wait)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, rec.sent, 2)
}

func TestTemplates(t *testing.T) {
	to := Recipient{Username: "alice", FullName: "Alice <Admin>", Email: "alice@x.io", CreatedAt: time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)}

	msg, err := WelcomeMessage(to, "123456", 15*time.Minute, "http://localhost:5173/verify")
	require.NoError(t, err)
	assert.Equal(t, KindWelcome, msg.Kind)
	assert.Equal(t, "alice@x.io", msg.To)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.HTML, "15 minutes")
	assert.Contains(t, msg.HTML, "25/06/2025")
	assert.Contains(t, msg.HTML, "Alice &lt;Admin&gt;")

	msg, err = VerificationCodeMessage(to, "654321", 15*time.Minute, "http://x/verify")
	require.NoError(t, err)
	assert.Equal(t, "654321", msg.Code)
	assert.Contains(t, msg.HTML, "654321")
}

func TestSMTPCompose(t *testing.T) {
	s := NewSMTPNotifier(config.Config{SMTPHost: "smtp.test", SMTPPort: 587, SMTPFrom: "noreply@librescript.com", SMTPFromName: "LibreScript"})
	raw := string(s.compose(Message{To: "a@x.io", Subject: "Bienvenue à vous", HTML: "<p>hi</p>"}))

	assert.Contains(t, raw, "From: LibreScript <noreply@librescript.com>\r\n")
	assert.Contains(t, raw, "To: a@x.io\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>")
}

type fakeVerify struct {
	params *verify.CreateVerificationParams
	sid    string
}

func (f *fakeVerify) CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error) {
	f.sid = serviceSid
	f.params = params
	return &verify.VerifyV2Verification{}, nil
}

func TestTwilioNotifier(t *testing.T) {
	fake := &fakeVerify{}
	n := &TwilioNotifier{verify: fake, serviceSID: "VA123", log: zap.NewNop()}

	require.NoError(t, n.Send(context.Background(), Message{To: "a@x.io"}))
	assert.Nil(t, fake.params)

	require.NoError(t, n.Send(context.Background(), Message{To: "a@x.io", Code: "123456"}))
	require.NotNil(t, fake.params)
	assert.Equal(t, "VA123", fake.sid)
	assert.Equal(t, "a@x.io", *fake.params.To)
	assert.Equal(t, "email", *fake.params.Channel)
	assert.Equal(t, "123456", *fake.params.CustomCode)
}

func TestNewNotifier(t *testing.T) {
	n, err := NewNotifier(config.Config{MailProvider: "smtp"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)

	_, err = NewNotifier(config.Config{MailProvider: "twilio"}, zap.NewNop())
	assert.Error(t, err)
}
