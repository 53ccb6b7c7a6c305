package domain

// User is a reporting user resolved from the user service.
type User struct {
	ID       string
	ClientID string
	Name     string
	Email    string
}
