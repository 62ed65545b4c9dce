package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <style>
      body { font-family: Arial, sans-serif; color: #333; background-color: #f9f9f9; padding: 20px; }
      .container { background-color: #ffffff; border-radius: 8px; padding: 20px; max-width: 600px; margin: auto; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
      .footer { margin-top: 30px; font-size: 12px; color: #777; }
    </style>
  </head>
  <body>
    <div class="container">{{template "content" .}}
      <div class="footer"><p>This is an automated message, please do not reply.</p></div>
    </div>
  </body>
</html>`

var (
	welcomeTmpl = template.Must(template.Must(template.New("welcome").Parse(layout)).Parse(`{{define "content"}}
      <h2>Welcome to LibreScript!</h2>
      <p>Hello <strong>{{.FullName}}</strong>,</p>
      <p>Your account has been created.</p>
      <p style="text-align: center;"><strong>Your verification code is:</strong></p>
      <h3 style="text-align: center;">{{.Code}}</h3>
      <p><strong>This code expires in {{.ExpiresIn}}.</strong></p>
      <p><a href="{{.VerifyURL}}">Verify my account</a></p>
      <ul>
        <li><strong>Username:</strong> {{.Username}}</li>
        <li><strong>Email:</strong> {{.Email}}</li>
        <li><strong>Created:</strong> {{.CreatedAt.Format "02/01/2006"}}</li>
      </ul>
      <p>The LibreScript team</p>{{end}}`))

	codeTmpl = template.Must(template.Must(template.New("code").Parse(layout)).Parse(`{{define "content"}}
      <h2>Your new verification code</h2>
      <p>Hello <strong>{{.FullName}}</strong>,</p>
      <h3 style="text-align: center;">{{.Code}}</h3>
      <p><strong>This code expires in {{.ExpiresIn}}.</strong></p>
      <p><a href="{{.VerifyURL}}">Verify my account</a></p>
      <p>The LibreScript team</p>{{end}}`))
)

// Recipient is the account data rendered into messages.
type Recipient struct {
	Username  string
	FullName  string
	Email     string
	CreatedAt time.Time
}

type codeData struct {
	Recipient
	Code      string
	ExpiresIn string
	VerifyURL string
}

func WelcomeMessage(to Recipient, code string, ttl time.Duration, verifyURL string) (Message, error) {
	html, err := render(welcomeTmpl, codeData{Recipient: to, Code: code, ExpiresIn: minutes(ttl), VerifyURL: verifyURL})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindWelcome,
		To:      to.Email,
		Subject: "Welcome " + to.FullName + " to LibreScript!",
		HTML:    html,
		Code:    code,
	}, nil
}

func VerificationCodeMessage(to Recipient, code string, ttl time.Duration, verifyURL string) (Message, error) {
	html, err := render(codeTmpl, codeData{Recipient: to, Code: code, ExpiresIn: minutes(ttl), VerifyURL: verifyURL})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindVerificationCode,
		To:      to.Email,
		Subject: "New verification code - LibreScript",
		HTML:    html,
		Code:    code,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func minutes(d time.Duration) string {
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
