package model

import "strings"

// MARC relator codes for the roles authors and contributors usually have.
const (
	RoleAuthor      = "aut"
	RoleEditor      = "edt"
	RoleIllustrator = "ill"
	RoleTranslator  = "trl"
	RoleNarrator    = "nrt"
	RoleContributor = "ctb"
	RolePublisher   = "pbl"
)

// Author is a dc:creator or dc:contributor.
type Author struct {
	FirstName string
	LastName  string
	Role      string // MARC relator code
}

// NewAuthor creates an author with the default "aut" role.
func NewAuthor(firstName, lastName string) *Author {
	return &Author{FirstName: firstName, LastName: lastName, Role: RoleAuthor}
}

// ParseAuthor splits a display name at its last space into first and last
// name. A name without spaces becomes the last name. It returns nil for a
// blank name.
func ParseAuthor(name string) *Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return NewAuthor("", name)
	}
	return NewAuthor(name[:i], name[i+1:])
}

// SetRole sets the relator code, falling back to "aut" for blank codes.
func (a *Author) SetRole(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = RoleAuthor
	}
	a.Role = code
}

// DisplayName returns "first last".
func (a *Author) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// FileAs returns the sort name "last, first".
func (a *Author) FileAs() string {
	if a.FirstName == "" {
		return a.LastName
	}
	return a.LastName + ", " + a.FirstName
}

// String implements fmt.Stringer.
func (a *Author) String() string {
	return a.FileAs()
}
