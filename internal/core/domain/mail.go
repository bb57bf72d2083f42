package domain

// OutgoingMail is the message contract handed to the mail sender: one plain
// text body and one binary attachment per recipient.
type OutgoingMail struct {
	From           string
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// SMTPCredential authenticates the outbound mail session. It is supplied per
// run and passed by value; the core never persists it.
type SMTPCredential struct {
	Host     string
	Port     int
	Username string
	Password string
}
