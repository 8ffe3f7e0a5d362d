package auth

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"devconsole/src/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testKey = "test-signing-key"

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testKey))
	require.NoError(t, err)
	return s
}

func newBasic(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := New(&config.AuthConfig{
		Type: "basic",
		BasicAuth: &config.BasicAuthConfig{
			Users: []config.BasicAuthUser{{Username: "admin", PasswordHash: string(hash)}},
			Realm: "console",
		},
	}, nil)
	require.NoError(t, err)
	a.failureDelay = 0
	return a
}

func newBearer(t *testing.T, issuer string) *Authenticator {
	t.Helper()
	a, err := New(&config.AuthConfig{
		Type: "bearer",
		BearerAuth: &config.BearerAuthConfig{
			Tokens: []string{"static-token"},
			JWT:    &config.JWTConfig{SigningKey: testKey, Issuer: issuer},
		},
	}, nil)
	require.NoError(t, err)
	a.failureDelay = 0
	return a
}

func TestNew_None(t *testing.T) {
	for _, cfg := range []*config.AuthConfig{nil, {Type: ""}, {Type: "none"}} {
		a, err := New(cfg, nil)
		require.NoError(t, err)
		assert.Nil(t, a)

		s, err := a.Authenticate("", "", "1.2.3.4:1")
		require.NoError(t, err)
		assert.Equal(t, "none", s.Method)
		assert.Empty(t, a.Challenge())
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&config.AuthConfig{Type: "basic"}, nil)
	assert.Error(t, err)
	_, err = New(&config.AuthConfig{Type: "bearer", BearerAuth: &config.BearerAuthConfig{}}, nil)
	assert.Error(t, err)
	_, err = New(&config.AuthConfig{Type: "mtls"}, nil)
	assert.Error(t, err)
}

func TestBasic(t *testing.T) {
	a := newBasic(t)
	assert.Equal(t, `Basic realm="console"`, a.Challenge())

	s, err := a.Authenticate(basicHeader("admin", "s3cret"), "", "10.0.0.1:1")
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Username)
	assert.Equal(t, "basic", s.Method)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong password", basicHeader("admin", "nope")},
		{"unknown user", basicHeader("root", "s3cret")},
		{"missing header", ""},
		{"bad base64", "Basic !!!"},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin"))},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Distinct IPs keep the brute-force limiter out of the way
			_, err := a.Authenticate(tt.header, "", "10.0.1."+string(rune('1'+i))+":1")
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestBearer_StaticAndQuery(t *testing.T) {
	a := newBearer(t, "")
	assert.Equal(t, "Bearer", a.Challenge())

	s, err := a.Authenticate("Bearer static-token", "", "10.0.0.1:1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", s.Method)

	s, err = a.Authenticate("", "static-token", "10.0.0.2:1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", s.Method)

	_, err = a.Authenticate("Bearer wrong", "", "10.0.0.3:1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = a.Authenticate("", "", "10.0.0.4:1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearer_JWT(t *testing.T) {
	a := newBearer(t, "devconsole")
	exp := time.Now().Add(time.Hour).Unix()

	valid := signToken(t, jwt.MapClaims{"sub": "alice", "iss": "devconsole", "exp": exp}, jwt.SigningMethodHS256)
	s, err := a.Authenticate("Bearer "+valid, "", "10.0.0.1:1")
	require.NoError(t, err)
	assert.Equal(t, "jwt", s.Method)
	assert.Equal(t, "alice", s.Username)

	rejected := map[string]string{
		"expired":     signToken(t, jwt.MapClaims{"iss": "devconsole", "exp": time.Now().Add(-time.Hour).Unix()}, jwt.SigningMethodHS256),
		"missing exp": signToken(t, jwt.MapClaims{"iss": "devconsole"}, jwt.SigningMethodHS256),
		"wrong iss":   signToken(t, jwt.MapClaims{"iss": "other", "exp": exp}, jwt.SigningMethodHS256),
		"garbage":     "not.a.jwt",
	}
	i := 0
	for name, token := range rejected {
		i++
		t.Run(name, func(t *testing.T) {
			_, err := a.Authenticate("", token, "10.0.2."+string(rune('0'+i))+":1")
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestBruteForceBlocking(t *testing.T) {
	a := newBasic(t)
	addr := "10.9.9.9:1"

	for range 3 {
		_, err := a.Authenticate(basicHeader("admin", "bad"), "", addr)
		require.ErrorIs(t, err, ErrUnauthorized)
	}

	_, err := a.Authenticate(basicHeader("admin", "s3cret"), "", addr)
	require.Error(t, err, "burst exhausted")
	assert.Contains(t, err.Error(), "rate limit exceeded")

	_, err = a.Authenticate(basicHeader("admin", "s3cret"), "", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporarily blocked")

	assert.Equal(t, 1, a.GetStats()["tracked_ips"])
}

func TestGenerator(t *testing.T) {
	var out, errOut bytes.Buffer
	g := &GeneratorCommand{output: &out, errOut: &errOut}
	g.readPassword = func(string) (string, error) { return "pw", nil }

	require.NoError(t, g.Execute([]string{"-u", "admin", "-cost", "4"}))
	assert.Contains(t, out.String(), "[[server.auth.basic_auth.users]]")
	assert.Contains(t, out.String(), `username = "admin"`)

	var hash string
	for _, line := range strings.Split(out.String(), "\n") {
		if after, ok := strings.CutPrefix(line, "password_hash = "); ok {
			hash = strings.Trim(after, `"`)
		}
	}
	require.NotEmpty(t, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	out.Reset()
	require.NoError(t, g.Execute([]string{"-t", "-l", "16"}))
	assert.Contains(t, out.String(), "tokens = [")

	out.Reset()
	require.NoError(t, g.Execute([]string{"-jwt-key", testKey, "-sub", "bob", "-ttl", "1h"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	token := lines[len(lines)-1]

	a := newBearer(t, "")
	s, err := a.Authenticate("Bearer "+token, "", "10.3.3.3:1")
	require.NoError(t, err)
	assert.Equal(t, "bob", s.Username)

	assert.Error(t, g.Execute([]string{}), "username required")
}
