package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/greenspire/plant-rental/internal/config"
	"github.com/greenspire/plant-rental/internal/lib/sl"
)

// Transport opens STARTTLS sessions against the configured SMTP server.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport creates a new Transport from the smtp config section.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// session adapts *smtp.Client to the Client interface.
type session struct {
	c *smtp.Client
}

func (s *session) Mail(from string) error        { return s.c.Mail(from) }
func (s *session) Rcpt(to string) error          { return s.c.Rcpt(to) }
func (s *session) Data() (io.WriteCloser, error) { return s.c.Data() }
func (s *session) Quit() error                   { return s.c.Quit() }
func (s *session) Close() error                  { return s.c.Close() }

// Connect dials the server, upgrades to TLS and authenticates.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Transport.Connect"

	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s: dial %s: %w", op, addr, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.closeQuietly(conn)
		return nil, fmt.Errorf("%s: handshake: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: auth: %w", op, err)
	}

	return &session{c: client}, nil
}

// GetSMTPUser returns the configured sender address.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}

func (t *Transport) closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close smtp connection", sl.Err(err))
	}
}
