package user

// Role determines which day editability rules apply to an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status tracks the approval lifecycle of an account. New signups start as
// pending and cannot authenticate until an admin approves them.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type User struct {
	Id     int
	Name   string
	Email  string
	Role   Role
	Status Status
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
