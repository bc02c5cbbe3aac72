package domain

import "github.com/go-user-registration/internal/pkg/id"

// RegistrationEmail is the confirmation message sent to a new user before the
// user is persisted. MessageID is a ULID assigned at construction.
type RegistrationEmail struct {
	MessageID               string `json:"message_id"`
	DestinationEmailAddress string `json:"destination_email_address"`
}

func NewRegistrationEmail(destination string) RegistrationEmail {
	return RegistrationEmail{
		MessageID:               id.New(),
		DestinationEmailAddress: destination,
	}
}

func (e *RegistrationEmail) SetDestinationEmailAddress(addr string) {
	e.DestinationEmailAddress = addr
}
