package extraction

import (
	"regexp"
	"strings"
)

// ExtractedReceiptData contains the fields recovered from raw receipt text.
// A zero Amount or empty Date means the field could not be extracted.
type ExtractedReceiptData struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // ISO 8601 format
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Vendor      string  `json:"vendor"`
}

// Parser extracts structured expense fields from raw OCR text using an
// ordered cascade of heuristic patterns. The category taxonomy and vendor
// keywords are supplied as configuration so the tables can change without
// touching the extraction logic.
type Parser struct {
	taxonomy       Taxonomy
	vendorKeywords []string
}

// NewParser creates a Parser with the default taxonomy and vendor keywords.
func NewParser() *Parser {
	return NewParserWithConfig(DefaultTaxonomy(), DefaultVendorKeywords())
}

// NewParserWithConfig creates a Parser with a custom taxonomy and vendor keyword set.
func NewParserWithConfig(taxonomy Taxonomy, vendorKeywords []string) *Parser {
	return &Parser{
		taxonomy:       taxonomy,
		vendorKeywords: vendorKeywords,
	}
}

// titleCaseLine matches lines made of space-separated Title-Case words,
// e.g. "Starbucks Coffee".
var titleCaseLine = regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+)*$`)

// noLettersLine matches lines with no letters at all (bare numbers,
// separators, decoration).
var noLettersLine = regexp.MustCompile(`^[^a-zA-Z]*$`)

// ParseExpenseData runs a single best-effort extraction pass over raw
// receipt text. It never fails: fields that cannot be recovered are left
// zero/empty and the caller decides via ValidateExtractedData whether the
// result is usable.
func (p *Parser) ParseExpenseData(text string) ExtractedReceiptData {
	lines := splitLines(text)
	vendor := p.extractVendor(lines)

	return ExtractedReceiptData{
		Amount:      extractAmount(text),
		Date:        extractDate(text),
		Description: extractDescription(lines, vendor),
		Category:    p.classifyCategory(text),
		Vendor:      vendor,
	}
}

// splitLines splits text into non-empty, whitespace-trimmed lines,
// preserving order.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractDescription picks the first line that looks like free text about
// the purchase: long enough, not a number/date/total line, and not the
// line already claimed as the vendor name.
func extractDescription(lines []string, vendor string) string {
	for _, line := range lines {
		if len(line) <= 10 {
			continue
		}
		if noLettersLine.MatchString(line) {
			continue
		}
		// Lines with digits are almost always addresses, dates or totals.
		if strings.ContainsAny(line, "0123456789") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "total") || strings.Contains(lower, "amount") || strings.Contains(lower, "tax") {
			continue
		}
		if line == vendor {
			continue
		}
		return line
	}
	return ""
}

// extractVendor scans lines in order for one that contains a business
// keyword or is made of Title-Case words.
func (p *Parser) extractVendor(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range p.vendorKeywords {
			if strings.Contains(lower, keyword) {
				return line
			}
		}
		if titleCaseLine.MatchString(line) {
			return line
		}
	}
	return ""
}

// classifyCategory returns the first taxonomy category with a keyword
// present anywhere in the text, in the taxonomy's declared order.
func (p *Parser) classifyCategory(text string) string {
	lower := strings.ToLower(text)
	for _, category := range p.taxonomy {
		for _, keyword := range category.Keywords {
			if strings.Contains(lower, keyword) {
				return category.Name
			}
		}
	}
	return ""
}
