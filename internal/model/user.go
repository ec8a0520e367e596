package model

// User is the identity forwarded by the authenticating proxy.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Group    string `json:"group"`
}
