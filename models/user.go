package models

import (
	"strings"
	"time"
)

// Role is the closed set of user roles. Every permission decision is derived from it.
type Role string

const (
	RoleReader     Role = "reader"
	RoleEditor     Role = "editor"
	RoleJournalist Role = "journalist"
)

var ValidRoles = []Role{RoleReader, RoleEditor, RoleJournalist}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleEditor, RoleJournalist:
		return true
	}
	return false
}

type User struct {
	ID        string    `bson:"_id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	FirstName string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Password  string    `bson:"password" json:"-"` // bcrypt hash
	Role      Role      `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
