// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderNumber string, total int, items []OrderItem) error {
	subject := fmt.Sprintf("Order Confirmed - %s", orderNumber)
	body := BuildOrderConfirmationBody(orderNumber, total, items)
	return s.send(to, subject, body)
}

// SendStatusUpdate sends an order status change email
func (s *Service) SendStatusUpdate(to, orderNumber, status string) error {
	subject := fmt.Sprintf("Order Update - %s", orderNumber)
	body := BuildStatusUpdateBody(orderNumber, status)
	return s.send(to, subject, body)
}

// SendCancellation sends an order cancellation email
func (s *Service) SendCancellation(to, orderNumber, reason string) error {
	subject := fmt.Sprintf("Order Cancelled - %s", orderNumber)
	body := BuildCancellationBody(orderNumber, reason)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
