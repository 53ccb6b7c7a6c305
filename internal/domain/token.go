package domain

// Token holds the identity claims a trusted gateway attached to the request.
type Token struct {
	Subject  string
	ClientID *string
	Role     Role
	Audience string
}

// HasClient reports whether the caller belongs to a client.
func (t Token) HasClient() bool {
	return t.ClientID != nil && *t.ClientID != ""
}

// Client returns the caller's client id or an empty string.
func (t Token) Client() string {
	if t.ClientID == nil {
		return ""
	}
	return *t.ClientID
}
