package document

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
)

const (
	companyName    = "Akrix AI"
	companyContact = "Email: akrix.ai@gmail.com | Phone: 8390690910"
	companyWebsite = "https://akrix-ai.vercel.app/"
)

// ReceiptData holds every field printed on a receipt. IssuedAt is the only
// time source, so equal inputs produce byte-identical PDFs.
type ReceiptData struct {
	ReceiptNumber    string
	IssuedAt         time.Time
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	CustomerAddress  string
	Amount           decimal.Decimal
	PaymentMode      string
	Status           string
	GatewayPaymentID string
	GatewayOrderID   string
	ProjectName      string
	ServiceType      string
	Description      string
}

type rgb struct{ r, g, b int }

var (
	primary = rgb{79, 70, 229}
	accent  = rgb{124, 58, 237}
	muted   = rgb{100, 116, 139}
	dark    = rgb{30, 41, 59}
	paid    = rgb{22, 163, 74}
)

type Renderer struct {
	location *time.Location
}

func NewRenderer() *Renderer {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &Renderer{location: loc}
}

func (r *Renderer) Render(data ReceiptData) ([]byte, error) {
	issued := data.IssuedAt.In(r.location)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(data.IssuedAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Receipt "+data.ReceiptNumber, true)
	pdf.SetAuthor(companyName, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	// header band
	fill(pdf, primary)
	pdf.Rect(0, 0, pageW, 38, "F")
	fill(pdf, accent)
	pdf.Rect(0, 38, pageW, 2, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(15, 10)
	pdf.CellFormat(0, 10, companyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(15)
	pdf.CellFormat(0, 6, companyContact, "", 1, "L", false, 0, "")

	textColor(pdf, dark)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(0, 48)
	pdf.CellFormat(pageW, 10, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(15, 62)
	pdf.CellFormat(100, 6, "Receipt #: "+data.ReceiptNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+issued.Format("02 Jan 2006"), "", 1, "R", false, 0, "")

	top := 76.0
	section(pdf, 15, top, "Customer Details", primary)
	y := top + 9
	if data.ProjectName != "" {
		y = row(pdf, tr, 15, y, "Project:", data.ProjectName)
	}
	y = row(pdf, tr, 15, y, "Name:", data.CustomerName)
	y = row(pdf, tr, 15, y, "Email:", data.CustomerEmail)
	y = row(pdf, tr, 15, y, "Phone:", data.CustomerPhone)
	textColor(pdf, muted)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(15, y)
	pdf.CellFormat(22, 6, "Address:", "", 0, "L", false, 0, "")
	textColor(pdf, dark)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(37, y)
	pdf.MultiCell(68, 6, tr(orDash(data.CustomerAddress)), "", "L", false)
	customerBottom := pdf.GetY()

	section(pdf, 112, top, "Payment Details", accent)
	py := top + 9
	py = row(pdf, tr, 112, py, "Amount:", "Rs. "+notifier.FormatAmount(data.Amount))
	py = row(pdf, tr, 112, py, "Mode:", strings.ToUpper(orDash(data.PaymentMode)))
	py = row(pdf, tr, 112, py, "Status:", strings.ToUpper(orDash(data.Status)))
	if data.ServiceType != "" {
		py = row(pdf, tr, 112, py, "Service:", data.ServiceType)
	}
	if data.GatewayOrderID != "" {
		py = row(pdf, tr, 112, py, "Order ID:", data.GatewayOrderID)
	}
	if data.GatewayPaymentID != "" {
		py = row(pdf, tr, 112, py, "Txn ID:", data.GatewayPaymentID)
	}
	py = row(pdf, tr, 112, py, "Date:", issued.Format("02 Jan 2006"))

	y = maxFloat(customerBottom, py) + 8
	if data.Description != "" {
		section(pdf, 15, y, "Service Description", primary)
		textColor(pdf, dark)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(15, y+9)
		pdf.MultiCell(pageW-30, 6, tr(data.Description), "", "L", false)
		y = pdf.GetY() + 6
	}

	// total box
	pdf.SetFillColor(238, 242, 255)
	pdf.RoundedRect(15, y, pageW-30, 20, 3, "1234", "F")
	textColor(pdf, primary)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(20, y+7)
	pdf.CellFormat(90, 6, "TOTAL AMOUNT PAID", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pageW-45-90, 6, "Rs. "+notifier.FormatAmount(data.Amount), "", 0, "R", false, 0, "")
	y += 30

	textColor(pdf, dark)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(15, y)
	pdf.CellFormat(0, 6, "Thank You for Your Payment!", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(15)
	pdf.CellFormat(0, 6, "Your transaction has been processed successfully.", "", 1, "L", false, 0, "")

	if strings.EqualFold(data.Status, "completed") {
		pdf.TransformBegin()
		pdf.TransformRotate(25, pageW/2, pageH/2)
		pdf.SetAlpha(0.15, "Normal")
		textColor(pdf, paid)
		pdf.SetFont("Helvetica", "B", 72)
		pdf.SetXY(0, pageH/2-15)
		pdf.CellFormat(pageW, 30, "PAID", "", 0, "C", false, 0, "")
		pdf.SetAlpha(1, "Normal")
		pdf.TransformEnd()
	}

	textColor(pdf, muted)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(15, pageH-22)
	pdf.CellFormat(0, 5, "This is a computer-generated receipt and does not require a signature.", "", 1, "L", false, 0, "")
	pdf.SetX(15)
	pdf.CellFormat(0, 5, "For queries, contact: akrix.ai@gmail.com | Visit: "+companyWebsite, "", 1, "L", false, 0, "")
	pdf.SetX(15)
	pdf.CellFormat(0, 5, "Generated on: "+issued.Format("02 Jan 2006, 15:04"), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, x, y float64, title string, color rgb) {
	textColor(pdf, color)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetXY(x, y)
	pdf.CellFormat(85, 7, title, "", 0, "L", false, 0, "")
	pdf.SetDrawColor(color.r, color.g, color.b)
	pdf.Line(x, y+7.5, x+85, y+7.5)
}

func row(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, label, value string) float64 {
	textColor(pdf, muted)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(22, 6, label, "", 0, "L", false, 0, "")
	textColor(pdf, dark)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(63, 6, tr(orDash(value)), "", 0, "L", false, 0, "")
	return y + 6.5
}

func fill(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
}

func textColor(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
