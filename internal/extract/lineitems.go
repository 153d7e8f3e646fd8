package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"facturo/internal/domain"
	"facturo/internal/numeric"
)

// Line item confidences. Rows mapped out of a recognized table are trusted;
// lines scraped from free text much less so.
const (
	lineTableConfidence = 0.8
	lineTextConfidence  = 0.5
)

// Header keywords mapping table columns to line item fields.
var (
	descHeaders  = []string{"descripción", "descripcion", "concepto", "description", "detalle", "artículo", "articulo"}
	qtyHeaders   = []string{"cantidad", "cant", "qty", "unidades", "uds"}
	priceHeaders = []string{"precio", "price", "p. unit", "precio unitario", "unitario"}
	totalHeaders = []string{"importe", "total", "subtotal"}
)

// freeLinePattern scrapes "description  qty  price" rows from unstructured
// text when no table was recognized.
var freeLinePattern = regexp.MustCompile(`(?m)^\s*(.{3,80}?)\s{2,}(\d+(?:[.,]\d+)?)\s{2,}([\d.,]+)\s*$`)

// LineItemExtractor maps recognized tables to invoice lines, falling back to
// a free-text scrape.
type LineItemExtractor struct{}

func NewLineItemExtractor() Extractor { return &LineItemExtractor{} }

func (e *LineItemExtractor) Field() Field { return FieldLineItems }

func (e *LineItemExtractor) Apply(doc *domain.DocumentContent, out *FieldResults) {
	for _, tbl := range doc.Tables {
		if lines := linesFromTable(&tbl); len(lines) > 0 {
			out.Lines = Pattern(lines, lineTableConfidence)
			return
		}
	}

	if lines := linesFromText(doc.Body()); len(lines) > 0 {
		out.Lines = Pattern(lines, lineTextConfidence)
		return
	}

	out.Lines = Unresolved[[]domain.InvoiceLine](nil)
}

// columnMap resolves which table column holds which line item field, by
// header keyword. Returns false when the table has no description and no
// amount column, meaning it is not a line item table at all.
type columnMap struct {
	desc, qty, price, total int
}

func mapColumns(headers []string) (columnMap, bool) {
	cm := columnMap{desc: -1, qty: -1, price: -1, total: -1}
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case cm.desc < 0 && matchesAny(h, descHeaders):
			cm.desc = i
		case cm.qty < 0 && matchesAny(h, qtyHeaders):
			cm.qty = i
		case cm.price < 0 && matchesAny(h, priceHeaders):
			cm.price = i
		case cm.total < 0 && matchesAny(h, totalHeaders):
			cm.total = i
		}
	}
	if cm.desc < 0 || (cm.price < 0 && cm.total < 0) {
		return cm, false
	}
	return cm, true
}

func matchesAny(header string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(header, kw) {
			return true
		}
	}
	return false
}

func linesFromTable(tbl *domain.Table) []domain.InvoiceLine {
	cm, ok := mapColumns(tbl.Headers)
	if !ok {
		return nil
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var lines []domain.InvoiceLine
	for _, row := range tbl.Rows {
		desc := cell(row, cm.desc)
		price, hasPrice := numeric.ParseAmount(cell(row, cm.price))
		total, hasTotal := numeric.ParseAmount(cell(row, cm.total))
		if !hasPrice && !hasTotal {
			// Section header or continuation row, not a priced line.
			continue
		}
		qty := numeric.ParseQuantity(cell(row, cm.qty))
		if !hasPrice && hasTotal && qty > 0 {
			price = total.Div(decimal.NewFromFloat(qty))
		}
		lines = append(lines, domain.NewInvoiceLine(desc, qty, price, total, lineTableConfidence))
	}
	return lines
}

func linesFromText(content string) []domain.InvoiceLine {
	var lines []domain.InvoiceLine
	for _, m := range freeLinePattern.FindAllStringSubmatch(content, -1) {
		desc := strings.TrimSpace(m[1])
		if looksLikeTotalsLine(desc) {
			continue
		}
		price, ok := numeric.ParseAmount(m[3])
		if !ok {
			continue
		}
		qty := numeric.ParseQuantity(m[2])
		lines = append(lines, domain.NewInvoiceLine(desc, qty, price, decimal.Zero, lineTextConfidence))
	}
	return lines
}

// looksLikeTotalsLine filters summary rows out of the free-text scrape so
// the totals block is not misread as line items.
func looksLikeTotalsLine(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range []string{"total", "subtotal", "base imponible", "iva", "irpf", "impuesto"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
