package models

// Viewer is the role a product listing is evaluated under.
// The zero value is the restricted user role.
type Viewer int

const (
	ViewerUser Viewer = iota
	ViewerAdmin
)

func (v Viewer) String() string {
	if v == ViewerAdmin {
		return "admin"
	}
	return "user"
}
