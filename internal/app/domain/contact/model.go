package contact

import "time"

// RequestType classifies inbound requests from the public site forms.
type RequestType string

const (
	TypeContact      RequestType = "contact"
	TypeOffer        RequestType = "offer"
	TypePresentation RequestType = "presentation"
)

// Request is a submission from one of the public contact forms. Requests are
// written once and never updated.
type Request struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Message   string
	Type      RequestType
	CreatedAt time.Time
}
