package domain

// Role names carried in JWT claims and checked by the role middleware.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
