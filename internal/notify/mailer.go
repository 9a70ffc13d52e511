package notify

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer sends account emails. Send failures are logged and never surfaced to
// the caller; registration must not fail because a mail relay is down.
type Mailer interface {
	SendWelcome(to, name string)
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *SMTPMailer) SendWelcome(to, name string) {
	if m.host == "" {
		return
	}
	go func() {
		msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Welcome to SkillForge\r\n\r\n"+
			"Hi %s,\r\n\r\nYour account has been created. You can now log in and start your assigned quizzes.\r\n",
			m.from, to, name)
		var auth smtp.Auth
		if m.user != "" {
			auth = smtp.PlainAuth("", m.user, m.pass, m.host)
		}
		if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg)); err != nil {
			log.Printf("mail: welcome to %s failed: %v", to, err)
		}
	}()
}

// NopMailer is used when no relay is configured and in tests.
type NopMailer struct{}

func (NopMailer) SendWelcome(string, string) {}
