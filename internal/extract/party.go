package extract

import (
	"regexp"
	"strings"

	"facturo/internal/domain"
	"facturo/internal/taxid"
)

// partyWindow is how many characters after a role keyword are treated as
// belonging to that party's block.
const partyWindow = 300

// Party field confidences. A name anchored to a role keyword starts at the
// base; a valid tax identifier in the same block raises it; a name scraped
// without any anchor is weak; a party we could not resolve at all still
// contributes a floor so the aggregate reflects the miss without zeroing it.
const (
	partyBaseConfidence    = 0.7
	partyTaxIDBonus        = 0.15
	partyWeakConfidence    = 0.4
	partyUnknownConfidence = 0.3
)

type partyRole int

const (
	roleSupplier partyRole = iota
	roleClient
)

// The bare prepositions only count with their colon so "de" cannot match
// inside another word.
var supplierKeywords = []string{"emisor", "proveedor", "vendedor", "razón social", "razon social", "de:", "from:"}

var clientKeywords = []string{"cliente", "destinatario", "facturar a", "bill to", "comprador", "para:", "to:"}

var taxIDLabel = regexp.MustCompile(`(?i)(?:CIF|NIF|NIE|VAT)[:\s.]*([A-Z0-9][A-Z0-9-]{7,10})`)

var taxIDBare = regexp.MustCompile(`\b(?:[ABCDEFGHJNPQRSUVW]\d{7}[A-J0-9]|\d{8}[A-Z]|[XYZ]\d{7}[A-Z])\b`)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var phonePattern = regexp.MustCompile(`(?:\+34\s?)?(?:\d[\s.-]?){9}`)

var postalPattern = regexp.MustCompile(`\b(0[1-9]|[1-4]\d|5[0-2])\d{3}\b`)

// PartyExtractor resolves one of the two invoice parties from the text
// block following its role keywords.
type PartyExtractor struct {
	role partyRole
}

func NewSupplierExtractor() Extractor { return &PartyExtractor{role: roleSupplier} }
func NewClientExtractor() Extractor   { return &PartyExtractor{role: roleClient} }

func (e *PartyExtractor) Field() Field {
	if e.role == roleClient {
		return FieldClient
	}
	return FieldSupplier
}

func (e *PartyExtractor) Apply(doc *domain.DocumentContent, out *FieldResults) {
	res := e.extract(doc.Body())
	if e.role == roleClient {
		out.Client = res
	} else {
		out.Supplier = res
	}
}

func (e *PartyExtractor) keywords() (own, opposing []string) {
	if e.role == roleClient {
		return clientKeywords, supplierKeywords
	}
	return supplierKeywords, clientKeywords
}

func (e *PartyExtractor) extract(content string) Result[domain.CompanyInfo] {
	own, opposing := e.keywords()
	lower := strings.ToLower(content)

	for _, kw := range own {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		block := partyBlock(content, lower, idx+len(kw), opposing)
		if info, ok := parseParty(block); ok {
			conf := partyBaseConfidence
			if info.TaxID != "" {
				conf += partyTaxIDBonus
			}
			info.Confidence = conf
			return Pattern(info, conf)
		}
	}

	// No anchor matched. The supplier often heads the document unlabelled,
	// so fall back to the opening lines, at weak confidence.
	if e.role == roleSupplier {
		head := content
		if len(head) > partyWindow {
			head = head[:partyWindow]
		}
		if info, ok := parseParty(head); ok {
			info.Confidence = partyWeakConfidence
			return Pattern(info, partyWeakConfidence)
		}
	}

	return Result[domain.CompanyInfo]{
		Value:      domain.NewCompanyInfo("", partyUnknownConfidence),
		Confidence: partyUnknownConfidence,
		Source:     domain.SourceDefault,
	}
}

// partyBlock slices the window following a keyword, cut short at the first
// occurrence of any opposing role keyword so the blocks do not bleed into
// each other.
func partyBlock(content, lower string, start int, opposing []string) string {
	end := start + partyWindow
	if end > len(content) {
		end = len(content)
	}
	window := lower[start:end]
	for _, kw := range opposing {
		if i := strings.Index(window, kw); i >= 0 && start+i < end {
			end = start + i
		}
	}
	return content[start:end]
}

// parseParty pulls a company name and whatever contact details appear in a
// party block. It fails only when no plausible name line exists.
func parseParty(block string) (domain.CompanyInfo, bool) {
	name := ""
	for _, line := range strings.Split(block, "\n") {
		line = strings.Trim(line, " \t:.-")
		if len(line) < 3 || len(line) > 200 {
			continue
		}
		if isDetailLine(line) {
			continue
		}
		name = line
		break
	}
	if name == "" {
		return domain.CompanyInfo{}, false
	}

	info := domain.NewCompanyInfo(name, 0)
	if m := taxIDLabel.FindStringSubmatch(block); m != nil {
		if id, ok := taxid.Normalize(m[1]); ok && taxid.Valid(id) {
			info.TaxID = id
		}
	}
	if info.TaxID == "" {
		if m := taxIDBare.FindString(block); m != "" {
			if id, ok := taxid.Normalize(m); ok && taxid.Valid(id) {
				info.TaxID = id
			}
		}
	}
	if m := emailPattern.FindString(block); m != "" {
		info.Email = m
	}
	if m := postalPattern.FindString(block); m != "" {
		info.PostalCode = m
	}
	if m := phonePattern.FindString(block); m != "" {
		info.Phone = strings.TrimSpace(m)
	}
	return info, true
}

// isDetailLine reports whether a line is contact detail rather than a
// company name, so name selection can skip past it.
func isDetailLine(line string) bool {
	if taxIDLabel.MatchString(line) || taxIDBare.MatchString(line) {
		return true
	}
	if emailPattern.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, prefix := range []string{"calle ", "c/ ", "avda", "avenida", "plaza ", "tel", "fax"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
