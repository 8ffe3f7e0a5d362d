// FILE: src/cmd/devconsole/commands/auth.go
package commands

import "devconsole/src/internal/auth"

// AuthCommand generates viewer credentials
type AuthCommand struct {
	*auth.GeneratorCommand
}

func NewAuthCommand() *AuthCommand {
	return &AuthCommand{GeneratorCommand: auth.NewGeneratorCommand()}
}

func (c *AuthCommand) Description() string {
	return "Generate viewer credentials (bcrypt hashes, tokens, JWTs)"
}

func (c *AuthCommand) Help() string {
	return `Auth Command - Generate credentials for the viewer server

Usage:
  devconsole auth -u <user> [-p <password>] [-cost n]
  devconsole auth -t [-l <bytes>]
  devconsole auth -jwt-key <key> [-sub <subject>] [-iss <issuer>] [-ttl <duration>]

Examples:
  devconsole auth -u admin           # prompt for a password, print a basic auth entry
  devconsole auth -t -l 64           # random bearer token
  devconsole auth -jwt-key s3cret    # HS256 JWT for bearer auth with a signing key

Paste the printed snippet into the [server.auth] section of the config file.
`
}
