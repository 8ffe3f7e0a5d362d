// FILE: src/cmd/devconsole/commands/tls.go
package commands

import ltls "devconsole/src/internal/tls"

// TLSCommand generates a self-signed viewer certificate
type TLSCommand struct {
	*ltls.CertGeneratorCommand
}

func NewTLSCommand() *TLSCommand {
	return &TLSCommand{CertGeneratorCommand: ltls.NewCertGeneratorCommand()}
}

func (c *TLSCommand) Description() string {
	return "Generate a self-signed TLS certificate for the viewer"
}

func (c *TLSCommand) Help() string {
	return `TLS Command - Generate a self-signed certificate for the viewer server

Usage:
  devconsole tls [-cn <name>] [-hosts <list>] [-days <n>] [-bits <n>]
                 [-cert-out <file>] [-key-out <file>]

Defaults: localhost, SANs localhost,127.0.0.1, 365 days, RSA 2048,
written to server.crt and server.key in the current directory.

The printed [server.tls] snippet enables HTTPS for the viewer.
`
}
