package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"equipment_lending_portal/dateutil"
	"equipment_lending_portal/models"
)

// TemplateData carries the per-template fields: every template gets the
// user and equipment names, the rest depends on the type.
type TemplateData struct {
	UserName      string
	EquipmentName string
	DueDate       time.Time
	ReturnDate    time.Time
	Days          int // daysLeft for reminders, daysOverdue for alerts
	Reason        string
}

// Mailer delivers one of the five fixed templates. Implementations must
// treat delivery as best-effort: callers log errors and move on.
type Mailer interface {
	Send(to, template string, data TemplateData) (messageID string, err error)
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	AppName  string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.AppName == "" {
		cfg.AppName = "Equipment Lending Portal"
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, template string, data TemplateData) (string, error) {
	subject, html, err := renderTemplate(template, data, m.cfg.AppName)
	if err != nil {
		return "", err
	}

	// 未配置 SMTP → 开发模式：打印即可，不报错
	if m.cfg.Host == "" || (m.cfg.Username == "" && m.cfg.From == "") {
		log.Printf("[DEV] mail to %s: %s", to, subject)
		return "dev-" + template, nil
	}

	fromAddr := m.cfg.From
	if fromAddr == "" {
		fromAddr = m.cfg.Username
	}

	msg := buildMIMEWithFromName(m.cfg.AppName, fromAddr, to, subject, html)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, fromAddr, []string{to}, []byte(msg)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", template, time.Now().UnixNano()), nil
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}

func renderTemplate(template string, d TemplateData, appName string) (subject, html string, err error) {
	footer := fmt.Sprintf(`<p style="color:#666; font-size:14px">Best regards,<br/>%s Team</p>`, appName)

	switch template {
	case models.NotifRequestApproved:
		subject = "Equipment Request Approved"
		html = fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <h2 style="color:#4CAF50">Request Approved!</h2>
  <p>Hello <b>%s</b>,</p>
  <p>Good news! Your request for <b>%s</b> has been approved.</p>
  <p><b>Due Date:</b> %s</p>
  <p>Please return the equipment by the due date to avoid overdue penalties.</p>
  %s
</div>`, d.UserName, d.EquipmentName, dateutil.FormatDate(d.DueDate), footer)

	case models.NotifRequestRejected:
		subject = "Equipment Request Status"
		reason := ""
		if d.Reason != "" {
			reason = fmt.Sprintf("<p><b>Reason:</b> %s</p>", d.Reason)
		}
		html = fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <h2 style="color:#f44336">Request Status Update</h2>
  <p>Hello <b>%s</b>,</p>
  <p>We regret to inform you that your request for <b>%s</b> could not be approved at this time.</p>
  %s
  <p>You can submit a new request for other available equipment or try again later.</p>
  %s
</div>`, d.UserName, d.EquipmentName, reason, footer)

	case models.NotifDueReminder:
		subject = "Equipment Due Soon - Reminder"
		html = fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <h2 style="color:#FF9800">Return Reminder</h2>
  <p>Hello <b>%s</b>,</p>
  <p>This is a friendly reminder that <b>%s</b> is due for return soon.</p>
  <p><b>Due Date:</b> %s<br/><b>Days Remaining:</b> %d</p>
  <p>Please plan to return the equipment on time to avoid overdue status.</p>
  %s
</div>`, d.UserName, d.EquipmentName, dateutil.FormatDate(d.DueDate), d.Days, footer)

	case models.NotifOverdueAlert:
		subject = "OVERDUE: Equipment Return Required"
		html = fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <h2 style="color:#D32F2F">Equipment Overdue</h2>
  <p>Hello <b>%s</b>,</p>
  <p><b>URGENT:</b> <b>%s</b> is now overdue for return.</p>
  <p><b>Due Date:</b> %s<br/><b>Days Overdue:</b> %d</p>
  <p>Please return the equipment immediately. Contact the equipment office if you need assistance or an extension.</p>
  %s
</div>`, d.UserName, d.EquipmentName, dateutil.FormatDate(d.DueDate), d.Days, footer)

	case models.NotifReturnConfirmation:
		subject = "Equipment Return Confirmed"
		html = fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <h2 style="color:#4CAF50">Return Confirmed</h2>
  <p>Hello <b>%s</b>,</p>
  <p>Thank you! We have successfully received <b>%s</b>.</p>
  <p><b>Return Date:</b> %s</p>
  <p>Thank you for using our equipment lending service!</p>
  %s
</div>`, d.UserName, d.EquipmentName, dateutil.FormatDate(d.ReturnDate), footer)

	default:
		return "", "", fmt.Errorf("unknown email template %q", template)
	}
	return subject, html, nil
}
