// FILE: src/internal/auth/authenticator.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconsole/src/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized wraps every credential failure
var ErrUnauthorized = errors.New("unauthorized")

// bcrypt hash of a random password, compared against for unknown users
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5C2cZ0Wg3JXLhB1xk6qQKyqG.vwAn5e"

// Authenticator validates viewer credentials
type Authenticator struct {
	config       *config.AuthConfig
	logger       *log.Logger
	basicUsers   map[string]string // username -> bcrypt hash
	bearerTokens [][]byte
	jwtParser    *jwt.Parser
	jwtKeyFunc   jwt.Keyfunc
	failureDelay time.Duration
	guard        *attemptGuard
}

// Session describes an authenticated viewer request
type Session struct {
	ID         string
	Username   string
	Method     string // none, basic, bearer, jwt
	RemoteAddr string
	CreatedAt  time.Time
}

// New creates an authenticator. It returns nil for type "none", which
// accepts every request.
func New(cfg *config.AuthConfig, logger *log.Logger) (*Authenticator, error) {
	if cfg == nil || cfg.Type == "" || cfg.Type == "none" {
		return nil, nil
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	a := &Authenticator{
		config:         cfg,
		logger:         logger,
		basicUsers:     make(map[string]string),
		failureDelay:   500 * time.Millisecond,
		guard:          newAttemptGuard(logger),
	}

	switch cfg.Type {
	case "basic":
		if cfg.BasicAuth == nil || len(cfg.BasicAuth.Users) == 0 {
			return nil, fmt.Errorf("basic auth requires at least one user")
		}
		for _, user := range cfg.BasicAuth.Users {
			a.basicUsers[user.Username] = user.PasswordHash
		}

	case "bearer":
		if cfg.BearerAuth == nil {
			return nil, fmt.Errorf("bearer auth config missing")
		}
		for _, token := range cfg.BearerAuth.Tokens {
			a.bearerTokens = append(a.bearerTokens, []byte(token))
		}
		if jwtCfg := cfg.BearerAuth.JWT; jwtCfg != nil && jwtCfg.SigningKey != "" {
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
				jwt.WithLeeway(5 * time.Second),
				jwt.WithExpirationRequired(),
			}
			if jwtCfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(jwtCfg.Issuer))
			}
			if jwtCfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(jwtCfg.Audience))
			}
			a.jwtParser = jwt.NewParser(opts...)

			key := []byte(jwtCfg.SigningKey)
			a.jwtKeyFunc = func(token *jwt.Token) (any, error) {
				return key, nil
			}
		}
		if len(a.bearerTokens) == 0 && a.jwtParser == nil {
			return nil, fmt.Errorf("bearer auth requires tokens or a jwt signing key")
		}

	default:
		return nil, fmt.Errorf("unsupported auth type: %s", cfg.Type)
	}

	logger.Info("msg", "Authenticator initialized",
		"component", "auth",
		"type", cfg.Type)

	return a, nil
}

// Authenticate validates the Authorization header or, for bearer auth, a
// token passed as a query parameter (EventSource cannot set headers).
func (a *Authenticator) Authenticate(authHeader, queryToken, remoteAddr string) (*Session, error) {
	if a == nil {
		return newSession("none", "", remoteAddr), nil
	}

	if err := a.guard.admit(remoteAddr, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var session *Session
	var err error

	switch a.config.Type {
	case "basic":
		session, err = a.authenticateBasic(authHeader, remoteAddr)
	case "bearer":
		token := queryToken
		if authHeader != "" {
			token, err = bearerToken(authHeader)
		}
		if err == nil {
			session, err = a.validateToken(token, remoteAddr)
		}
	}

	a.guard.result(remoteAddr, err == nil)
	if err != nil {
		a.logger.Debug("msg", "Authentication failed",
			"component", "auth",
			"remote_addr", remoteAddr,
			"error", err)
		if a.failureDelay > 0 {
			time.Sleep(a.failureDelay)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return session, nil
}

// Challenge returns the WWW-Authenticate header value for a 401 response
func (a *Authenticator) Challenge() string {
	if a == nil {
		return ""
	}
	if a.config.Type == "basic" {
		realm := "devconsole"
		if a.config.BasicAuth != nil && a.config.BasicAuth.Realm != "" {
			realm = a.config.BasicAuth.Realm
		}
		return fmt.Sprintf("Basic realm=%q", realm)
	}
	return "Bearer"
}

func (a *Authenticator) authenticateBasic(authHeader, remoteAddr string) (*Session, error) {
	scheme, payload, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return nil, fmt.Errorf("invalid basic auth header")
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding")
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("invalid credentials format")
	}

	expectedHash, exists := a.basicUsers[username]
	if !exists {
		// Compare anyway so unknown users cost the same time
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(expectedHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return newSession("basic", username, remoteAddr), nil
}

func bearerToken(authHeader string) (string, error) {
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("invalid bearer auth header")
	}
	return strings.TrimSpace(token), nil
}

func (a *Authenticator) validateToken(token, remoteAddr string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}

	for _, static := range a.bearerTokens {
		if subtle.ConstantTimeCompare(static, []byte(token)) == 1 {
			return newSession("bearer", "", remoteAddr), nil
		}
	}

	if a.jwtParser == nil {
		return nil, fmt.Errorf("invalid token")
	}

	claims := jwt.MapClaims{}
	parsed, err := a.jwtParser.ParseWithClaims(token, claims, a.jwtKeyFunc)
	if err != nil {
		return nil, fmt.Errorf("JWT validation failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}

	username, _ := claims.GetSubject()
	return newSession("jwt", username, remoteAddr), nil
}

func newSession(method, username, remoteAddr string) *Session {
	return &Session{
		ID:         rand.Text(),
		Username:   username,
		Method:     method,
		RemoteAddr: remoteAddr,
		CreatedAt:  time.Now(),
	}
}

// GetStats returns authentication statistics
func (a *Authenticator) GetStats() map[string]any {
	if a == nil {
		return map[string]any{"enabled": false}
	}

	return map[string]any{
		"enabled":       true,
		"type":          a.config.Type,
		"basic_users":   len(a.basicUsers),
		"static_tokens": len(a.bearerTokens),
		"jwt":           a.jwtParser != nil,
		"tracked_ips":   a.guard.tracked(),
	}
}
