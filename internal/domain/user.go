package domain

type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
	Admin          bool   `json:"admin"`
}

// Actor is the authenticated caller as asserted by the upstream gateway.
type Actor struct {
	UserID int64
	Admin  bool
}

// CanAccess reports whether the actor may read or modify a record owned by ownerID.
func (a Actor) CanAccess(ownerID int64) bool {
	return a.Admin || a.UserID == ownerID
}
