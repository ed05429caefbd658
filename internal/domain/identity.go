package domain

const RoleAdmin = "admin"

// Identity is the caller as asserted by the upstream identity provider.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may see or act on b.
func (i Identity) CanAccess(b Booking) bool {
	return i.IsAdmin() || (i.ID != "" && b.UserID == i.ID)
}
