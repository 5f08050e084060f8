package credstore

// Well-known keys used by the session controller. Kept here so every backing
// implementation and the controller agree on the persisted namespace.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyPendingOAuth    = "pending_oauth"
	KeyPendingPassword = "pending_password"
)

// Store is the persisted key-value contract shared by all backings.
//
// Get returns the stored value and whether it was present; it must not fail. Set and
// Clear are best-effort: an unavailable medium is swallowed so an interactive auth
// flow is never blocked on persistence.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear(key string)
	ClearAll()
}
