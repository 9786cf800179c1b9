package model

import "time"

// Role is a closed access tag granted to an identity
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// RoleSet is the set of roles held by an identity.
// A signed-in identity always holds at least RoleStudent.
type RoleSet []Role

// Has reports whether the set contains the given role
func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// Add returns a new set with the role included (no duplicates)
func (rs RoleSet) Add(role Role) RoleSet {
	if rs.Has(role) {
		return rs.Clone()
	}
	out := make(RoleSet, 0, len(rs)+1)
	out = append(out, rs...)
	out = append(out, role)
	return out
}

// Clone returns a copy of the set
func (rs RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(rs))
	copy(out, rs)
	return out
}

// Strings returns the roles as plain strings (wire / flat-key form)
func (rs RoleSet) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// ParseRoles builds a RoleSet from plain strings, dropping unknown tags
func ParseRoles(tags []string) RoleSet {
	var out RoleSet
	for _, t := range tags {
		switch Role(t) {
		case RoleStudent, RoleTeacher:
			out = append(out, Role(t))
		}
	}
	return out
}

// TeacherProfile holds the teacher-specific part of an identity.
// Present only after a successful role upgrade.
type TeacherProfile struct {
	Interests   []string  `json:"interests"`
	Bio         string    `json:"bio"`
	ActivatedAt time.Time `json:"activated_at"`
}

// Identity represents the signed-in user.
// It is owned exclusively by the session store and replaced wholesale
// on every successful auth operation; nothing mutates it in place.
type Identity struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	DisplayName    string          `json:"display_name"`
	Roles          RoleSet         `json:"roles"`
	TeacherProfile *TeacherProfile `json:"teacher_profile,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsTeacher reports whether the identity holds the teacher role
func (id *Identity) IsTeacher() bool {
	return id != nil && id.Roles.Has(RoleTeacher)
}

// Clone returns a deep copy of the identity
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	out := *id
	out.Roles = id.Roles.Clone()
	if id.TeacherProfile != nil {
		tp := *id.TeacherProfile
		tp.Interests = append([]string(nil), id.TeacherProfile.Interests...)
		out.TeacherProfile = &tp
	}
	return &out
}
