package local

import "fmt"

// Flat keys for the persisted session identity. These are read back
// verbatim at startup, one field per key.
const (
	keySessionToken       = "session:token"
	keySessionUserID      = "session:user_id"
	keySessionEmail       = "session:user_email"
	keySessionName        = "session:user_name"
	keySessionRoles       = "session:user_roles"
	keySessionInterests   = "session:teacher_interests"
	keySessionBio         = "session:teacher_bio"
	keySessionActivatedAt = "session:teacher_activated_at"
	keySessionCreatedAt   = "session:created_at"
)

// keySigningSecret holds the HS256 secret for local session tokens
const keySigningSecret = "auth:signing_secret"

// accountKey returns the key for a registered account record
func accountKey(email string) string {
	return fmt.Sprintf("account:%s", email)
}

// playlistKey returns the key for a playlist record
func playlistKey(id string) string {
	return fmt.Sprintf("playlist:%s", id)
}

// resourceKey returns the key for a resource record
func resourceKey(playlistID, id string) string {
	return fmt.Sprintf("resource:%s:%s", playlistID, id)
}
