package model

// User mirrors the `user` table.  Accounts are owned by the identity
// provider; the booking service only reads them to decorate responses.
type User struct {
	Email string `json:"email"` // user.email
	Name  string `json:"name"`  // user.name
}
