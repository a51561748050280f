// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

func smtpSettings() (host, user, pass string, port int) {
	host = os.Getenv("SMTP_HOST")
	user = os.Getenv("SMTP_USER")
	pass = os.Getenv("SMTP_PASS")
	port = 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}
	return
}

// SendVerificationEmail mails the signup verification code to a new account.
func SendVerificationEmail(email, fullName, code string) error {
	subject := "Verify your Threadora account"
	body := fmt.Sprintf("Dear %s,\n\nYour verification code is: %s\n\nEnter this code in the app to activate your account. The code expires in 15 minutes.\n\nBest regards,\nThe Threadora Team", fullName, code)
	return sendMail(email, subject, body)
}

// SendPasswordResetEmail mails a password reset code.
func SendPasswordResetEmail(email, fullName, code string) error {
	subject := "Reset your Threadora password"
	body := fmt.Sprintf("Dear %s,\n\nYour password reset code is: %s\n\nIf you did not request a reset, you can ignore this email.\n\nBest regards,\nThe Threadora Team", fullName, code)
	return sendMail(email, subject, body)
}

func sendMail(to, subject, body string) error {
	smtpHost, smtpUser, smtpPass, smtpPort := smtpSettings()

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return err
	}
	return nil
}
