package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c EmailConfig) configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

var emailTemplate = template.Must(template.New("alerts").Parse(`<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px;">
      <h2 style="color: #2563eb;">🏥 Doctors Arriving Soon</h2>
      <p>The following doctor(s) will be available shortly:</p>
      <ul style="list-style: none; padding: 0;">
      {{- range . }}
        <li style="background: #f0f9ff; padding: 15px; margin: 10px 0; border-left: 4px solid #2563eb;">
          <strong>{{ .DoctorName }}</strong> ({{ .Category }})<br>
          <span style="color: #666;">Starting in {{ .StartsInMinutes }} minutes</span><br>
          <span style="color: #666;">Time: {{ .TimeRangeText }}</span>
        </li>
      {{- end }}
      </ul>
      <p style="color: #666; font-size: 12px; margin-top: 20px;">This is an automated notification from the health center schedule service.</p>
    </div>
  </body>
</html>`))

type mailDialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSender mails an HTML digest of alerts over SMTP with STARTTLS.
type EmailSender struct {
	config EmailConfig
	dial   func() (mailDialer, error)
	log    *logrus.Logger
}

func NewEmailSender(cfg EmailConfig, log *logrus.Logger) *EmailSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	s := &EmailSender{config: cfg, log: log}
	s.dial = s.newClient
	if !cfg.configured() {
		log.Warn("SMTP credentials not configured, email notifications disabled")
	}
	return s
}

func (s *EmailSender) Enabled() bool {
	return s != nil && s.config.configured()
}

func (s *EmailSender) Send(ctx context.Context, to string, alerts []entity.UpcomingAlert) error {
	if !s.Enabled() {
		return ErrTransportDisabled
	}

	msg, err := s.buildMessage(to, alerts)
	if err != nil {
		return err
	}

	client, err := s.dial()
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	s.log.Infof("Email sent to %s", to)
	return nil
}

func (s *EmailSender) buildMessage(to string, alerts []entity.UpcomingAlert) (*mail.Msg, error) {
	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, alerts); err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.config.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(fmt.Sprintf("🏥 %d Doctor(s) Arriving Soon", len(alerts)))
	msg.SetBodyString(mail.TypeTextHTML, body.String())
	return msg, nil
}

func (s *EmailSender) newClient() (mailDialer, error) {
	return mail.NewClient(s.config.Host,
		mail.WithPort(s.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}
