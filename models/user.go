package models

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User mirrors a row of the hosted backend's users table. ID is the auth
// subject issued by the hosted backend, not a generated key.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone"`
	Name          string    `json:"name"`
	Is_Approved   bool      `json:"isApproved"`
	Role          string    `json:"role"`
	Created_At    time.Time `json:"createdAt" goqu:"skipinsert"`
	User_Timezone *string   `json:"userTimezone"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserRoleUpdate struct {
	Role string `json:"role" binding:"required,oneof=member admin"`
}

type UserTimezoneUpdate struct {
	UserTimezone string `json:"userTimezone" binding:"required"`
}
