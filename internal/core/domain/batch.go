package domain

import "time"

type BatchStatus string

const (
	StatusUploaded   BatchStatus = "uploaded"
	StatusProcessing BatchStatus = "processing"
	StatusCompleted  BatchStatus = "completed"
	StatusFailed     BatchStatus = "failed"
)

// Batch is one pay-cycle dispatch job: a consolidated payslip PDF plus the
// roster it is matched against.
type Batch struct {
	ID          string      `json:"id"`
	PayslipKey  string      `json:"payslip_key"`
	RosterKey   string      `json:"roster_key"`
	SenderEmail string      `json:"sender_email"`
	Status      BatchStatus `json:"status"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DispatchReport summarises the most recent pipeline run over a batch.
// Outcomes belong to a single run and are replaced wholesale by the next one.
type DispatchReport struct {
	Total    int               `json:"total"`
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Outcomes []DeliveryOutcome `json:"outcomes"`
}

func BuildReport(outcomes []DeliveryOutcome) DispatchReport {
	report := DispatchReport{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Status == OutcomeSent {
			report.Sent++
		} else {
			report.Failed++
		}
	}
	return report
}
