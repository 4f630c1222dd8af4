package notifier

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

var (
	receiptTmpl = template.Must(template.New("receipt").Parse(
		`<p>Dear {{.Name}},<br>Your payment of &#8377;{{.Amount}} was successful.<br>Receipt #: <b>{{.ReceiptNumber}}</b></p>`))

	operatorTmpl = template.Must(template.New("operator").Parse(
		`<p>New payment received from {{.Name}} ({{.Email}})<br>Amount: &#8377;{{.Amount}}<br>Receipt #: <b>{{.ReceiptNumber}}</b></p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(
		`<div><h2>Akrix Payment Reminder</h2>` +
			`<p>Dear <b>{{.Name}}</b>,</p>` +
			`<p>This is a friendly reminder that a payment of <b>&#8377;{{.Amount}}</b> is due.</p>` +
			`<div>{{.Message}}</div>` +
			`<p>If you have already made the payment, please ignore this message.</p>` +
			`<p>Thank you for choosing <b>Akrix</b>.<br>- Akrix Team</p></div>`))

	directReceiptTmpl = template.Must(template.New("direct").Parse(
		`<div><h1>PAYMENT RECEIPT</h1>` +
			`<p>Receipt Number: <b>{{.ReceiptNumber}}</b><br>Date Issued: {{.IssuedOn}}</p>` +
			`<table>` +
			`<tr><td>Project Name</td><td>{{.ProjectName}}</td></tr>` +
			`<tr><td>Full Name</td><td>{{.Name}}</td></tr>` +
			`<tr><td>Email</td><td>{{.Email}}</td></tr>` +
			`<tr><td>Phone</td><td>{{.Phone}}</td></tr>` +
			`<tr><td>Address</td><td>{{.Address}}</td></tr>` +
			`</table>` +
			`<p>Amount Paid: <b>&#8377;{{.Amount}}</b><br>Payment Mode: {{.PaymentMode}}<br>Service Type: {{.ServiceType}}</p>` +
			`{{if .Description}}<p>{{.Description}}</p>{{end}}` +
			`<p>Thank you for choosing Akrix.</p></div>`))
)

type ReceiptMailData struct {
	Name          string
	Email         string
	Amount        decimal.Decimal
	ReceiptNumber string
}

type DirectReceiptMailData struct {
	ReceiptNumber string
	IssuedOn      string
	ProjectName   string
	Name          string
	Email         string
	Phone         string
	Address       string
	Amount        decimal.Decimal
	PaymentMode   string
	ServiceType   string
	Description   string
}

func ReceiptPDFAttachment(receiptNumber string, pdf []byte) Attachment {
	return Attachment{
		Filename:    "Receipt_" + receiptNumber + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	}
}

func CustomerReceiptMail(data ReceiptMailData, pdf []byte) (Mail, error) {
	html, err := render(receiptTmpl, map[string]string{
		"Name":          data.Name,
		"Amount":        FormatAmount(data.Amount),
		"ReceiptNumber": data.ReceiptNumber,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:          []string{data.Email},
		Subject:     "Payment Successful - Receipt from Akrix",
		HTML:        html,
		Attachments: []Attachment{ReceiptPDFAttachment(data.ReceiptNumber, pdf)},
	}, nil
}

func OperatorReceiptMail(operatorEmail string, data ReceiptMailData, pdf []byte) (Mail, error) {
	html, err := render(operatorTmpl, map[string]string{
		"Name":          data.Name,
		"Email":         data.Email,
		"Amount":        FormatAmount(data.Amount),
		"ReceiptNumber": data.ReceiptNumber,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:          []string{operatorEmail},
		Subject:     fmt.Sprintf("New Payment Received - Rs.%s from %s", FormatAmount(data.Amount), data.Name),
		HTML:        html,
		Attachments: []Attachment{ReceiptPDFAttachment(data.ReceiptNumber, pdf)},
	}, nil
}

func ReminderMail(to, name string, amount decimal.Decimal, message string) (Mail, error) {
	html, err := render(reminderTmpl, map[string]string{
		"Name":    name,
		"Amount":  FormatAmount(amount),
		"Message": message,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      []string{to},
		Subject: "Payment Reminder - Akrix",
		HTML:    html,
	}, nil
}

func DirectReceiptMail(data DirectReceiptMailData, pdf []byte) (Mail, error) {
	html, err := render(directReceiptTmpl, map[string]string{
		"ReceiptNumber": data.ReceiptNumber,
		"IssuedOn":      data.IssuedOn,
		"ProjectName":   data.ProjectName,
		"Name":          data.Name,
		"Email":         data.Email,
		"Phone":         data.Phone,
		"Address":       data.Address,
		"Amount":        FormatAmount(data.Amount),
		"PaymentMode":   data.PaymentMode,
		"ServiceType":   data.ServiceType,
		"Description":   data.Description,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:          []string{data.Email},
		Subject:     "Your Receipt from Akrix",
		HTML:        html,
		Attachments: []Attachment{ReceiptPDFAttachment(data.ReceiptNumber, pdf)},
	}, nil
}

func ReminderWhatsAppBody(name string, amount decimal.Decimal, message string) string {
	return fmt.Sprintf("Hi %s,\n\nThis is a payment reminder from Akrix. Amount due: ₹%s\n%s", name, FormatAmount(amount), message)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
