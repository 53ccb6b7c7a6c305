package domain

// Employee is a client employee resolved from the employee service.
type Employee struct {
	ID               string
	ClientID         string
	Name             string
	Email            string
	Role             Role
	InvitationStatus string
	InvitationDate   string
}
