package adminauth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

const pendingRecordVersion1 = 1

var (
	errPendingMalformed = errors.New("pending context malformed")
	errPendingStale     = errors.New("pending context stale")
)

// pendingRecord is the persisted envelope around a PendingAuthContext. The version
// byte lets a future shape change invalidate old records instead of mis-reading them.
type pendingRecord struct {
	Version int                `json:"v"`
	Context PendingAuthContext `json:"ctx"`
}

func encodePending(ctx *PendingAuthContext) (string, error) {
	data, err := json.Marshal(pendingRecord{
		Version: pendingRecordVersion1,
		Context: *ctx,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodePending(raw string, maxAge time.Duration, now time.Time) (*PendingAuthContext, error) {
	var record pendingRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, errPendingMalformed
	}
	if record.Version != pendingRecordVersion1 {
		return nil, errPendingMalformed
	}

	p := record.Context
	if p.ID == "" || p.Email == "" {
		return nil, errPendingMalformed
	}
	switch p.Kind {
	case PendingOAuth, PendingPassword:
	default:
		return nil, errPendingMalformed
	}
	switch p.Flow {
	case FlowLogin, FlowRegistration, FlowBootstrap:
	case "":
		p.Flow = FlowLogin
	default:
		return nil, errPendingMalformed
	}
	if p.Flow == FlowRegistration && p.InviteToken == "" {
		return nil, errPendingMalformed
	}

	issued := time.Unix(p.IssuedAt, 0)
	if p.IssuedAt <= 0 || issued.After(now.Add(time.Minute)) || now.Sub(issued) > maxAge {
		return nil, errPendingStale
	}

	return &p, nil
}

func pendingKeyFor(kind PendingKind) string {
	if kind == PendingOAuth {
		return credstore.KeyPendingOAuth
	}
	return credstore.KeyPendingPassword
}

// savePending persists exactly one pending context: both pending keys are cleared
// first so creating a new context implicitly discards any previous one.
func savePending(store credstore.Store, p *PendingAuthContext) error {
	encoded, err := encodePending(p)
	if err != nil {
		return err
	}
	store.Clear(credstore.KeyPendingOAuth)
	store.Clear(credstore.KeyPendingPassword)
	store.Set(pendingKeyFor(p.Kind), encoded)
	return nil
}

// loadPending reads the persisted pending context, enforcing the at-most-one
// invariant. Two simultaneously present records are contradictory state from an
// interrupted write; both are discarded.
func loadPending(store credstore.Store, maxAge time.Duration, now time.Time) *PendingAuthContext {
	rawOAuth, okOAuth := store.Get(credstore.KeyPendingOAuth)
	rawPassword, okPassword := store.Get(credstore.KeyPendingPassword)

	if okOAuth && okPassword {
		store.Clear(credstore.KeyPendingOAuth)
		store.Clear(credstore.KeyPendingPassword)
		return nil
	}

	raw := rawOAuth
	key := credstore.KeyPendingOAuth
	if okPassword {
		raw = rawPassword
		key = credstore.KeyPendingPassword
	} else if !okOAuth {
		return nil
	}

	p, err := decodePending(raw, maxAge, now)
	if err != nil {
		store.Clear(key)
		return nil
	}
	return p
}

func clearPending(store credstore.Store) {
	store.Clear(credstore.KeyPendingOAuth)
	store.Clear(credstore.KeyPendingPassword)
}
