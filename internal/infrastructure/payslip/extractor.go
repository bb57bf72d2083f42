package payslip

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// First standalone digit run on a page is the employee code. Fragile if an
	// unrelated number is printed first; see DESIGN.md before changing.
	identifierPattern = regexp.MustCompile(`\b(\d+)\b`)

	// Case-sensitive anchor followed by an amount with optional thousands
	// separators, e.g. "NET AMOUNT PAYABLE : 45,000".
	salaryPattern = regexp.MustCompile(`NET AMOUNT PAYABLE\s*:\s*(\d[\d,]*)`)
)

// Extractor pulls the identifier and net-salary fields out of rendered
// payslip text. Both lookups are first-match-wins.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Identifier(pageText string) (string, bool) {
	match := identifierPattern.FindStringSubmatch(pageText)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func (e *Extractor) NetSalary(documentText string) (int, bool) {
	match := salaryPattern.FindStringSubmatch(documentText)
	if match == nil {
		return 0, false
	}
	amount, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return amount, true
}
