package domain

type OutcomeStatus string

const (
	OutcomeSent             OutcomeStatus = "sent"
	OutcomeNoMatchingRecord OutcomeStatus = "no_matching_record"
	OutcomeMissingEmail     OutcomeStatus = "missing_email"
	OutcomeSalaryNotFound   OutcomeStatus = "salary_extraction_failed"
	OutcomeSendFailed       OutcomeStatus = "send_failed"
)

// DeliveryOutcome is the terminal status recorded for one employee document
// after a full pipeline pass. Exactly one outcome is produced per document.
type DeliveryOutcome struct {
	Identifier string        `json:"identifier"`
	Status     OutcomeStatus `json:"status"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}
