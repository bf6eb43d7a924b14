package domain

// Credential is one opaque access token and the name it is reported under.
// Tokens never appear in logs or findings; Name does.
type Credential struct {
	// Name identifies the credential in logs, e.g. "token-1" or "ci-bot".
	Name string `json:"name"`

	// Token is the secret bearer value sent to the API.
	Token string `json:"-"`
}

// Redacted returns the token with all but its last four characters masked.
func (c Credential) Redacted() string {
	if len(c.Token) <= 4 {
		return "****"
	}
	return "****" + c.Token[len(c.Token)-4:]
}

// IsZero reports whether the credential carries no token.
func (c Credential) IsZero() bool {
	return c.Token == ""
}
