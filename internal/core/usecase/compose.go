package usecase

import (
	"fmt"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

const mailSubject = "Monthly Salary Payslip"

// mailBodyTemplate is the interoperable notification body. Receiving systems
// parse it, so the wording is fixed.
const mailBodyTemplate = "Dear %s,\n\n" +
	"Please find attached your monthly salary payslip. Your net salary for this month is PKR: %d.\n\n" +
	"If you have any question or concerns regarding your salary or deductions, please don't hesitate to reach out our HR department.\n\n" +
	"Thank you for your hard work and dedication\n\n" +
	"Best regards,\nPTIS\nHR Department"

func composePayslipMail(
	sender string,
	record domain.RosterRecord,
	salary int,
	document domain.EmployeeDocument,
	attachment []byte,
) domain.OutgoingMail {
	return domain.OutgoingMail{
		From:           sender,
		To:             record.Email,
		Subject:        mailSubject,
		Body:           fmt.Sprintf(mailBodyTemplate, record.Name, salary),
		AttachmentName: document.AttachmentName(),
		Attachment:     attachment,
	}
}
