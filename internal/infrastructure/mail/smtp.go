package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

// SMTPSender delivers one message per call over an authenticated STARTTLS
// session. No retries: a failed send is surfaced to the caller as-is and
// recorded against that recipient only.
type SMTPSender struct {
	limiter *rate.Limiter
}

// NewSMTPSender builds a sender with an optional global send-rate cap.
// sendsPerMinute <= 0 disables the limiter.
func NewSMTPSender(sendsPerMinute int) *SMTPSender {
	var limiter *rate.Limiter
	if sendsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(sendsPerMinute)), 1)
	}
	return &SMTPSender{limiter: limiter}
}

func (s *SMTPSender) Send(ctx context.Context, credential domain.SMTPCredential, outgoing domain.OutgoingMail) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("send rate limiter: %w", err)
		}
	}

	client, err := mail.NewClient(
		credential.Host,
		mail.WithPort(credential.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(credential.Username),
		mail.WithPassword(credential.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	message, err := buildMessage(outgoing)
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("smtp send to %s: %w", outgoing.To, err)
	}
	return nil
}

func buildMessage(outgoing domain.OutgoingMail) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(outgoing.From); err != nil {
		return nil, fmt.Errorf("set sender address: %w", err)
	}
	if err := message.To(outgoing.To); err != nil {
		return nil, fmt.Errorf("set recipient address: %w", err)
	}
	message.Subject(outgoing.Subject)
	message.SetBodyString(mail.TypeTextPlain, outgoing.Body)
	if err := message.AttachReader(outgoing.AttachmentName, bytes.NewReader(outgoing.Attachment)); err != nil {
		return nil, fmt.Errorf("attach %s: %w", outgoing.AttachmentName, err)
	}
	return message, nil
}
