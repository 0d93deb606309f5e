package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends customer emails over SMTP.
type Email struct {
	host     string
	port     string
	from     string
	sendMail SendMailFunc
}

// NewEmail creates an SMTP email sink.
func NewEmail(host, port, from string) *Email {
	return &Email{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// WithSendMail replaces the SMTP transport.
func (s *Email) WithSendMail(fn SendMailFunc) *Email {
	s.sendMail = fn
	return s
}

// Notify emails the customer for order-created and payment-confirmed
// events. Other kinds are ignored.
func (s *Email) Notify(_ context.Context, event Event) error {
	to := event.Order.Billing.Email
	if to == "" {
		log.Printf("[Email] Order %s has no customer email", event.Order.OrderNumber)
		return nil
	}

	var subject, body string
	switch event.Kind {
	case KindOrderCreated:
		subject = fmt.Sprintf("Order received (%s)", event.Order.OrderNumber)
		body = BuildOrderReceivedBody(event.Order)
	case KindPaymentConfirmed:
		subject = fmt.Sprintf("Payment confirmed (%s)", event.Order.OrderNumber)
		body = BuildPaymentConfirmedBody(event.Order)
	default:
		return nil
	}

	if err := s.send(to, subject, body); err != nil {
		return fmt.Errorf("email to %s: %w", to, err)
	}
	log.Printf("[Email] %s email sent to %s for order %s", event.Kind, to, event.Order.OrderNumber)
	return nil
}

func (s *Email) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, sanitizeHeader(subject), body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
