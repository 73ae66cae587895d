package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	HashedPassword string `json:"-"` // Not exposed
	Role           string `json:"role"`
}

// Principal is the identity carried by a verified access token.
type Principal struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
