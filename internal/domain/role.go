package domain

// Role enumerates the caller roles carried in gateway tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgent   Role = "agent"
	RoleAnalyst Role = "analyst"
	RoleUser    Role = "user"
)
