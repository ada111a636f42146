package client

import (
	"context"
	"crypto/md5"

	"github.com/go-mclib/bot/auth"
	ns "github.com/go-mclib/bot/net_structures"
)

// TokenRefresher obtains a fresh Mojang access token for an online-mode
// account. Implementations wrap auth.AuthClient so the handshake package
// never needs to know whether a refresh token, a cached session, or an
// interactive browser flow produced the token.
type TokenRefresher interface {
	Refresh(ctx context.Context) (auth.LoginData, error)
}

// refreshTokenFunc adapts a plain function to TokenRefresher.
type refreshTokenFunc func(ctx context.Context) (auth.LoginData, error)

func (f refreshTokenFunc) Refresh(ctx context.Context) (auth.LoginData, error) { return f(ctx) }

// Account identifies the player this Client logs in as. An Account with a
// nil Refresh is offline-mode: its UUID is derived deterministically from
// Username, the same way a vanilla offline-mode server does, and no
// encryption/session-server exchange happens during the handshake.
type Account struct {
	Username    string
	UUID        ns.UUID
	AccessToken string
	Refresh     TokenRefresher
}

// offlineUUID reproduces Java's UUID.nameUUIDFromBytes(bytes): the MD5 digest
// of bytes alone (no namespace prefix), with the version nibble forced to 3
// and the variant bits forced to the RFC 4122 form. This is NOT the same
// construction as RFC 4122 UUIDv3 (which hashes namespace||name); a
// namespace-prefixed digest such as uuid.NewMD5(uuid.Nil, bytes) produces a
// different, non-vanilla-compatible UUID.
func offlineUUID(username string) ns.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return ns.UUID(sum)
}

// OfflineAccount builds an Account with a vanilla-compatible offline UUID
// (MD5 of "OfflinePlayer:<username>", per Java's UUID.nameUUIDFromBytes).
func OfflineAccount(username string) Account {
	return Account{
		Username: username,
		UUID:     offlineUUID(username),
	}
}

// OnlineAccount builds an Account that authenticates with Mojang's session
// server during the handshake, refreshing its access token through refresh
// whenever the server rejects the current one.
func OnlineAccount(login auth.LoginData, authClient *auth.AuthClient) Account {
	parsed, err := ns.NewUUID(login.UUID)
	if err != nil {
		// A malformed UUID in LoginData means the auth provider is
		// misbehaving; fall back to an offline derivation rather than
		// propagating a zero-value UUID into the handshake.
		parsed = offlineUUID(login.Username)
	}
	return Account{
		Username:    login.Username,
		UUID:        parsed,
		AccessToken: login.AccessToken,
		Refresh: refreshTokenFunc(func(ctx context.Context) (auth.LoginData, error) {
			return authClient.LoginWithRefreshToken(ctx, login.RefreshToken)
		}),
	}
}

// Online reports whether the account authenticates through the session
// server (true) or connects in offline mode (false).
func (a Account) Online() bool { return a.Refresh != nil }
