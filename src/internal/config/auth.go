// FILE: src/internal/config/auth.go
package config

import "fmt"

// AuthConfig guards the viewer endpoints
type AuthConfig struct {
	// Authentication type: "none", "basic", "bearer"
	Type string `toml:"type"`

	BasicAuth  *BasicAuthConfig  `toml:"basic_auth"`
	BearerAuth *BearerAuthConfig `toml:"bearer_auth"`
}

type BasicAuthConfig struct {
	Users []BasicAuthUser `toml:"users"`

	// Realm for WWW-Authenticate header
	Realm string `toml:"realm"`
}

type BasicAuthUser struct {
	Username string `toml:"username"`
	// Password hash (bcrypt)
	PasswordHash string `toml:"password_hash"`
}

type BearerAuthConfig struct {
	// Static tokens
	Tokens []string `toml:"tokens"`

	// HS256 JWT validation
	JWT *JWTConfig `toml:"jwt"`
}

type JWTConfig struct {
	SigningKey string `toml:"signing_key"`

	// Expected issuer, empty = not checked
	Issuer string `toml:"issuer"`

	// Expected audience, empty = not checked
	Audience string `toml:"audience"`
}

func validateAuth(auth *AuthConfig) error {
	if auth == nil {
		return nil
	}

	switch auth.Type {
	case "", "none":
	case "basic":
		if auth.BasicAuth == nil || len(auth.BasicAuth.Users) == 0 {
			return fmt.Errorf("basic auth type specified but no users configured")
		}
		for i, u := range auth.BasicAuth.Users {
			if u.Username == "" || u.PasswordHash == "" {
				return fmt.Errorf("basic auth user[%d]: username and password_hash are required", i)
			}
		}
	case "bearer":
		if auth.BearerAuth == nil {
			return fmt.Errorf("bearer auth type specified but config missing")
		}
		hasJWT := auth.BearerAuth.JWT != nil && auth.BearerAuth.JWT.SigningKey != ""
		if len(auth.BearerAuth.Tokens) == 0 && !hasJWT {
			return fmt.Errorf("bearer auth requires tokens or a jwt signing_key")
		}
	default:
		return fmt.Errorf("invalid auth type: %s", auth.Type)
	}

	return nil
}
