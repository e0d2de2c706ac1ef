package payroll

import (
	"bytes"
	"fmt"
	"strings"
)

func payslipLines(pr *Payroll) []string {
	currency := ""
	lines := []string{"Payslip " + pr.Period(), ""}
	if pr.Employee != nil {
		currency = pr.Employee.SalaryCurrency
		lines = append(lines,
			"Employee: "+strings.TrimSpace(pr.Employee.FullName()),
			"Employee ID: "+pr.Employee.Code,
		)
		if pr.Employee.Position != "" {
			lines = append(lines, "Position: "+pr.Employee.Position)
		}
		lines = append(lines, "")
	}
	amount := func(label, v string) string {
		if currency == "" {
			return fmt.Sprintf("%-12s %s", label, v)
		}
		return fmt.Sprintf("%-12s %s %s", label, v, currency)
	}
	lines = append(lines,
		amount("Base salary", pr.BaseSalary.StringFixed(2)),
		amount("Bonuses", pr.Bonuses.StringFixed(2)),
		amount("Deductions", pr.Deductions.StringFixed(2)),
		amount("Net salary", pr.NetSalary.StringFixed(2)),
		"",
		"Status: "+string(pr.Status),
	)
	if pr.PaymentDate != nil {
		lines = append(lines, "Paid on: "+pr.PaymentDate.Format(dateLayout))
	}
	return lines
}

// buildPayslipPDF renders lines as a single-page PDF using the built-in
// Helvetica font.
func buildPayslipPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Payslip"}
	}

	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n14 TL\n50 800 Td\n")
	for i, line := range lines {
		escaped := pdfEscape(line)
		if i == 0 {
			fmt.Fprintf(&content, "(%s) Tj\n", escaped)
			continue
		}
		fmt.Fprintf(&content, "T* (%s) Tj\n", escaped)
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 1, len(objects)+1)
	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(offsets))
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefStart)

	return out.Bytes(), nil
}

var pdfReplacer = strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")

func pdfEscape(v string) string {
	return pdfReplacer.Replace(v)
}
