package lti

import "strings"

// Role is the canonical category derived from the raw LTI role URIs.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// roleKeywords maps categories to case-sensitive substrings matched against
// the raw role strings. Order is precedence: first match wins.
var roleKeywords = []struct {
	role     Role
	keywords []string
}{
	{RoleAdmin, []string{"Admin"}},
	{RoleInstructor, []string{"Instructor"}},
}

// Classify maps the raw role claim to a single category. Admin keywords win
// over Instructor keywords; anything else is a student. Deterministic and
// side-effect-free; always recomputed from the raw strings, never stored.
func Classify(roles []string) Role {
	for _, rk := range roleKeywords {
		for _, raw := range roles {
			for _, kw := range rk.keywords {
				if strings.Contains(raw, kw) {
					return rk.role
				}
			}
		}
	}
	return RoleStudent
}
