// FILE: src/internal/auth/generator.go
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// GeneratorCommand implements "devconsole auth": it prints bcrypt password
// hashes, random bearer tokens and signed JWTs as config snippets.
type GeneratorCommand struct {
	output io.Writer
	errOut io.Writer

	// readPassword prompts for a password without echo
	readPassword func(prompt string) (string, error)
}

func NewGeneratorCommand() *GeneratorCommand {
	g := &GeneratorCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
	g.readPassword = g.promptPassword
	return g
}

func (g *GeneratorCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("auth", flag.ContinueOnError)
	cmd.SetOutput(g.errOut)

	var (
		username = cmd.String("u", "", "Username for basic auth")
		password = cmd.String("p", "", "Password to hash (will prompt if not provided)")
		cost     = cmd.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
		genToken = cmd.Bool("t", false, "Generate random bearer token")
		tokenLen = cmd.Int("l", 32, "Token length in bytes")
		jwtKey   = cmd.String("jwt-key", "", "Sign an HS256 JWT with this key")
		subject  = cmd.String("sub", "viewer", "JWT subject")
		issuer   = cmd.String("iss", "", "JWT issuer")
		ttl      = cmd.Duration("ttl", 24*time.Hour, "JWT lifetime")
	)

	cmd.Usage = func() {
		fmt.Fprintln(g.errOut, "Generate viewer credentials for devconsole")
		fmt.Fprintln(g.errOut, "\nUsage: devconsole auth [options]")
		fmt.Fprintln(g.errOut, "\nExamples:")
		fmt.Fprintln(g.errOut, "  # bcrypt hash for a basic auth user")
		fmt.Fprintln(g.errOut, "  devconsole auth -u admin")
		fmt.Fprintln(g.errOut, "  ")
		fmt.Fprintln(g.errOut, "  # 64-byte bearer token")
		fmt.Fprintln(g.errOut, "  devconsole auth -t -l 64")
		fmt.Fprintln(g.errOut, "  ")
		fmt.Fprintln(g.errOut, "  # JWT valid for one hour")
		fmt.Fprintln(g.errOut, "  devconsole auth -jwt-key secret -ttl 1h")
		fmt.Fprintln(g.errOut, "\nOptions:")
		cmd.PrintDefaults()
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}

	switch {
	case *jwtKey != "":
		return g.generateJWT(*jwtKey, *subject, *issuer, *ttl, time.Now())
	case *genToken:
		return g.generateToken(*tokenLen)
	case *username == "":
		cmd.Usage()
		return fmt.Errorf("username required for password hash generation")
	}

	return g.generatePasswordHash(*username, *password, *cost)
}

func (g *GeneratorCommand) generatePasswordHash(username, password string, cost int) error {
	if password == "" {
		pass1, err := g.readPassword("Enter password: ")
		if err != nil {
			return err
		}
		pass2, err := g.readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if pass1 != pass2 {
			return fmt.Errorf("passwords don't match")
		}
		password = pass1
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(g.output, "\n# TOML Configuration (add to devconsole.toml):")
	fmt.Fprintln(g.output, "[[server.auth.basic_auth.users]]")
	fmt.Fprintf(g.output, "username = %q\n", username)
	fmt.Fprintf(g.output, "password_hash = %q\n", string(hash))

	return nil
}

func (g *GeneratorCommand) generateToken(length int) error {
	if length < 16 {
		fmt.Fprintln(g.errOut, "Warning: tokens < 16 bytes are cryptographically weak")
	}
	if length > 512 {
		return fmt.Errorf("token length exceeds maximum (512 bytes)")
	}

	token := make([]byte, length)
	if _, err := rand.Read(token); err != nil {
		return fmt.Errorf("failed to generate random bytes: %w", err)
	}

	b64 := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(token)

	fmt.Fprintln(g.output, "\n# TOML Configuration (add to devconsole.toml):")
	fmt.Fprintln(g.output, "[server.auth.bearer_auth]")
	fmt.Fprintf(g.output, "tokens = [%q]\n", b64)

	return nil
}

func (g *GeneratorCommand) generateJWT(key, subject, issuer string, ttl time.Duration, now time.Time) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(g.output, "\n# Generated JWT (send as 'Authorization: Bearer <jwt>' or '?token=<jwt>'):")
	fmt.Fprintln(g.output, signed)

	return nil
}

func (g *GeneratorCommand) promptPassword(prompt string) (string, error) {
	fmt.Fprint(g.errOut, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(g.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
