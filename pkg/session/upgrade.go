// Package session models the one external control hook the data tree
// relies on but does not implement itself: deciding whether a session
// creating an ephemeral znode needs to be upgraded from a local,
// node-only session to one tracked globally, so that the ephemeral it
// owns means the same thing cluster-wide.
package session

import "github.com/mikekulinski/ztree/pkg/zkerrors"

// Info describes the session a create transaction arrived on.
type Info struct {
	ID            int64
	IsLocal       bool
	TimeoutMillis int32
}

// Upgrader is implemented by whatever session tracker a caller plugs in;
// the data tree never talks to it directly.
type Upgrader interface {
	// IsLocalSessionsEnabled reports whether this server accepts local
	// (node-only) sessions at all.
	IsLocalSessionsEnabled() bool
	// IsLocalSessionUpgradingEnabled reports whether a local session is
	// allowed to be promoted to a globally-tracked one on demand.
	IsLocalSessionUpgradingEnabled() bool
	// UpgradeSession promotes sess to a globally-tracked session and
	// returns its (possibly new) session id.
	UpgradeSession(sess Info) (int64, error)
}

// CheckUpgradeSession decides what session id an ephemeral create should
// be attributed to. A non-ephemeral create, or one from an already-global
// session, passes through unchanged. A local session creating an
// ephemeral is upgraded if the tracker allows it, and rejected with
// EphemeralOnLocalSession if upgrading is disabled outright.
func CheckUpgradeSession(u Upgrader, sess Info, isEphemeralCreate bool) (int64, error) {
	if !isEphemeralCreate || !sess.IsLocal {
		return sess.ID, nil
	}
	if !u.IsLocalSessionsEnabled() {
		return sess.ID, nil
	}
	if !u.IsLocalSessionUpgradingEnabled() {
		return 0, zkerrors.New(zkerrors.EphemeralOnLocalSession, "")
	}
	return u.UpgradeSession(sess)
}
