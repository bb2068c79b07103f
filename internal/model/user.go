// Package model defines the data structures used throughout the application.
package model

// DefaultImageURL is the placeholder profile picture assigned at signup when
// the user leaves the image field empty.
const DefaultImageURL = "/static/images/default-pic.png"

// User represents a registered account.
//
// The username is the primary identifier — it is what favorites reference
// and what the session carries. PasswordHash holds the bcrypt output; the
// plaintext never leaves the auth service.
type User struct {
	Username     string `json:"username"  db:"username"`
	PasswordHash string `json:"-"         db:"password"`
	ImageURL     string `json:"imageUrl"  db:"image_url"`
}
