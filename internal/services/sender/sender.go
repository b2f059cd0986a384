// Package sender реализует диспетчер уведомлений: формирование писем
// и их отправку через SMTP транспорт. Все ошибки транспорта возвращаются
// вызывающему как error и не пересекают границу пакета иначе;
// вызывающий не должен фиксировать состояние до подтвержденной отправки.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/workabroad/application-portal/internal/lib/sl"
	"github.com/workabroad/application-portal/internal/lib/smtp"
)

const letterHeader = "CVE NOTIFICATION DEPARTMENT"

// SenderService отправляет письма портала: приветствие, официальное
// письмо о приеме (и его еженедельный вариант-напоминание), а также
// подталкивающие письма о незавершенной или не начатой заявке.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcome отправляет приветственное письмо после регистрации.
func (s *SenderService) SendWelcome(email, fullName string) error {
	subject := "Welcome to the Work Abroad Application Platform"
	body := fmt.Sprintf(`Hello %s,

Thank you for registering on our platform.

You can now log in and complete your application.

Best regards,
Work Abroad Team
`, fullName)

	return s.sendEmail([]string{email}, subject, body, "")
}

// SendAcceptanceLetter отправляет официальное письмо о приеме с HTML
// версией и текстовым запасным вариантом. isReminder переключает тему
// письма с "Acceptance" на "Reminder"; тело остается тем же.
func (s *SenderService) SendAcceptanceLetter(email, fullName, registrationNumber string, isReminder bool) error {
	subject := letterHeader + " - Acceptance Letter"
	if isReminder {
		subject = strings.Replace(subject, "Acceptance", "Reminder", 1)
	}
	firstName := fullName
	if idx := strings.IndexByte(fullName, ' '); idx > 0 {
		firstName = fullName[:idx]
	}

	plain := fmt.Sprintf(`%s
Acceptance Letter
NOTIFICATION

Applicant %s,
Registration # %s, has been approved for Permanent Residency evaluation to Canada.

This enables an immigration review for Permanent Residency status in Canada. Complete the online application to check if you meet the criteria for Employment based Express Entry to Canada.

Complete your electronic application here: Click Here>> (https://www.canadianvisaexpert.com/application)

Your request for immigration services is confirmed.

%s - continue to your online application here.

Secretary of Registry
Canadian Visa Expert
https://www.canadianvisaexpert.com/
`, letterHeader, fullName, registrationNumber, firstName)

	html := fmt.Sprintf(`<html>
<body style="font-family: 'Times New Roman', Times, serif; max-width: 650px; margin: 0 auto;">
<div style="font-size: 18px; font-weight: bold; text-align: center; text-transform: uppercase;">%s</div>
<div style="font-size: 16px; font-weight: bold; text-align: center;">Acceptance Letter</div>
<div style="font-size: 14px; text-align: center; text-decoration: underline;">NOTIFICATION</div>
<div style="font-size: 14px; margin: 25px 0;">
<p>Applicant %s,<br>Registration # %s, has been approved for Permanent Residency evaluation to Canada.</p>
<p>This enables an immigration review for Permanent Residency status in Canada. Complete the online application to check if you meet the criteria for Employment based Express Entry to Canada.</p>
<p>Complete your electronic application here:
<a href="https://www.canadianvisaexpert.com/application" style="font-weight: bold;">Click Here&gt;&gt;</a></p>
<p style="font-weight: bold;">Your request for immigration services is confirmed.</p>
<p>%s - continue to your online application here.</p>
</div>
<div style="margin-top: 30px; font-size: 14px;">
<p>Secretary of Registry<br>Canadian Visa Expert<br>
<a href="https://www.canadianvisaexpert.com/">https://www.canadianvisaexpert.com/</a></p>
</div>
</body>
</html>`, letterHeader, fullName, registrationNumber, firstName)

	return s.sendEmail([]string{email}, subject, plain, html)
}

// SendIncompleteNudge отправляет напоминание о незавершенной заявке
// со списком оставшихся шагов.
func (s *SenderService) SendIncompleteNudge(email, fullName string, missingSteps []string) error {
	subject := "Reminder: Complete Your Work Abroad Application"
	steps := "- " + strings.Join(missingSteps, "\n- ")
	body := fmt.Sprintf(`Hello %s,

We noticed your application is still incomplete. Please complete:
%s

Resume your application by logging in to the portal.

Best regards,
Work Abroad Team
`, fullName, steps)

	return s.sendEmail([]string{email}, subject, body, "")
}

// SendStartNudge отправляет приглашение начать заявку пользователю,
// у которого записи еще нет.
func (s *SenderService) SendStartNudge(email, fullName string) error {
	subject := "Start Your Work Abroad Application"
	body := fmt.Sprintf(`Hello %s,

You registered on our platform but have not started your application yet.
The four application steps take only a few minutes each.

Log in to the portal to begin.

Best regards,
Work Abroad Team
`, fullName)

	return s.sendEmail([]string{email}, subject, body, "")
}

// sendEmail собирает MIME сообщение и отправляет его через транспорт.
// Пустой htmlBody дает обычное текстовое письмо, иначе собирается
// multipart/alternative с текстовой и HTML частями.
func (s *SenderService) sendEmail(to []string, subject, bodyText, htmlBody string) error {
	headers := []string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
	}

	var msg string
	if htmlBody == "" {
		msg = strings.Join(append(headers,
			"Content-Type: text/plain; charset=\"UTF-8\"",
			"",
			bodyText,
		), "\r\n")
	} else {
		const boundary = "portal-alt-boundary"
		msg = strings.Join(append(headers,
			"Content-Type: multipart/alternative; boundary=\""+boundary+"\"",
			"",
			"--"+boundary,
			"Content-Type: text/plain; charset=\"UTF-8\"",
			"",
			bodyText,
			"--"+boundary,
			"Content-Type: text/html; charset=\"UTF-8\"",
			"",
			htmlBody,
			"--"+boundary+"--",
		), "\r\n")
	}

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to, "subject", subject)
	return nil
}
