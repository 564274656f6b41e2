package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders deadline digests; an interface so handlers can be tested
// without producing real PDFs.
type Generator interface {
	DeadlineDigest(data DigestData) ([]byte, error)
}

type DigestData struct {
	UserName    string
	GeneratedAt time.Time
	Rows        []DigestRow
}

type DigestRow struct {
	Title    string
	DueDate  time.Time
	DaysLeft int
	Priority string
}

type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// DeadlineDigest renders the caller's upcoming deadlines as a one-page PDF.
func (g *ReportGenerator) DeadlineDigest(data DigestData) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Upcoming deadlines", false)
	doc.SetAuthor("Planboard", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Upcoming Deadlines", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	sub := fmt.Sprintf("%s — generated %s",
		data.UserName, data.GeneratedAt.Format("Jan 2, 2006 15:04"))
	doc.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(90, 8, "Task", "B", 0, "L", false, 0, "")
	doc.CellFormat(35, 8, "Due", "B", 0, "L", false, 0, "")
	doc.CellFormat(25, 8, "Days left", "B", 0, "R", false, 0, "")
	doc.CellFormat(20, 8, "Priority", "B", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	if len(data.Rows) == 0 {
		doc.Ln(2)
		doc.CellFormat(0, 8, "Nothing due in the lookahead window.", "", 1, "L", false, 0, "")
	}
	for _, row := range data.Rows {
		days := fmt.Sprintf("%d", row.DaysLeft)
		if row.DaysLeft == 0 {
			days = "today"
		}
		doc.CellFormat(90, 8, row.Title, "", 0, "L", false, 0, "")
		doc.CellFormat(35, 8, row.DueDate.Format("Jan 2"), "", 0, "L", false, 0, "")
		doc.CellFormat(25, 8, days, "", 0, "R", false, 0, "")
		doc.CellFormat(20, 8, row.Priority, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render deadline digest: %w", err)
	}
	return buf.Bytes(), nil
}
