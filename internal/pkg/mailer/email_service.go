package mailer

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDossier(toEmail, displayName, dossierMarkdown string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendDossier(toEmail, displayName, dossierMarkdown string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Votre dossier de diagnostic est prêt")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Bonjour %s,</h2>
			<p>Votre parcours de diagnostic est terminé. Vous trouverez votre dossier complet en pièce jointe.</p>
			<p>À très bientôt,</p>
			<p>L'équipe CoachDiag</p>
		</div>
	`, displayName)

	m.SetBody("text/html", body)
	m.Attach("dossier.md", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write([]byte(dossierMarkdown))
		return err
	}))

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send dossier to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Dossier sent to %s\n", toEmail)
	return nil
}
