package domain

// EmployeeDocument is the accumulated set of source pages attributed to one
// identifier: the page numbers in original order, their concatenated text, and
// the storage key of the assembled single-employee PDF.
type EmployeeDocument struct {
	Identifier string
	Pages      []int
	Text       string
	StorageKey string
}

// AttachmentName is the stable per-run file name for the assembled document.
// Identifiers are kept exactly as extracted, with no leading-zero
// normalization.
func (d EmployeeDocument) AttachmentName() string {
	return d.Identifier + ".pdf"
}
