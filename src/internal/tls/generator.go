// FILE: src/internal/tls/generator.go
package tls

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net"
	"os"
	"strings"
	"time"
)

// CertOptions describes a self-signed viewer certificate
type CertOptions struct {
	CommonName string
	Org        string
	Hosts      string // comma-separated hostnames/IPs
	ValidDays  int
	Bits       int
	Now        time.Time
}

// GenerateSelfSigned returns PEM-encoded certificate and RSA key
func GenerateSelfSigned(opts CertOptions) (certPEM, keyPEM []byte, err error) {
	if opts.CommonName == "" {
		return nil, nil, fmt.Errorf("common name is required")
	}
	if opts.Bits == 0 {
		opts.Bits = 2048
	}
	if opts.ValidDays <= 0 {
		opts.ValidDays = 365
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	priv, err := rsa.GenerateKey(rand.Reader, opts.Bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	dnsNames, ipAddrs := parseHosts(opts.Hosts)
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   opts.CommonName,
			Organization: []string{opts.Org},
		},
		NotBefore: opts.Now.Add(-time.Minute),
		NotAfter:  opts.Now.AddDate(0, 0, opts.ValidDays),

		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		DNSNames:    dnsNames,
		IPAddresses: ipAddrs,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	return certPEM, keyPEM, nil
}

func parseHosts(hostList string) ([]string, []net.IP) {
	var dnsNames []string
	var ipAddrs []net.IP

	if hostList == "" {
		return dnsNames, ipAddrs
	}

	for _, h := range strings.Split(hostList, ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if ip := net.ParseIP(h); ip != nil {
			ipAddrs = append(ipAddrs, ip)
		} else {
			dnsNames = append(dnsNames, h)
		}
	}

	return dnsNames, ipAddrs
}

// CertGeneratorCommand implements "devconsole tls"
type CertGeneratorCommand struct {
	output io.Writer
	errOut io.Writer
}

func NewCertGeneratorCommand() *CertGeneratorCommand {
	return &CertGeneratorCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (cg *CertGeneratorCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("tls", flag.ContinueOnError)
	cmd.SetOutput(cg.errOut)

	var (
		commonName = cmd.String("cn", "localhost", "Common name")
		org        = cmd.String("org", "devconsole", "Organization")
		hosts      = cmd.String("hosts", "localhost,127.0.0.1", "Comma-separated hostnames/IPs")
		validDays  = cmd.Int("days", 365, "Validity period in days")
		keySize    = cmd.Int("bits", 2048, "RSA key size")
		certOut    = cmd.String("cert-out", "server.crt", "Output certificate file")
		keyOut     = cmd.String("key-out", "server.key", "Output key file")
	)

	cmd.Usage = func() {
		fmt.Fprintln(cg.errOut, "Generate a self-signed TLS certificate for the devconsole viewer")
		fmt.Fprintln(cg.errOut, "\nUsage: devconsole tls [options]")
		fmt.Fprintln(cg.errOut, "\nExample:")
		fmt.Fprintln(cg.errOut, "  devconsole tls -cn devbox -hosts devbox,10.0.0.5 -cert-out devbox.crt -key-out devbox.key")
		fmt.Fprintln(cg.errOut, "\nOptions:")
		cmd.PrintDefaults()
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}

	certPEM, keyPEM, err := GenerateSelfSigned(CertOptions{
		CommonName: *commonName,
		Org:        *org,
		Hosts:      *hosts,
		ValidDays:  *validDays,
		Bits:       *keySize,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(*certOut, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(*keyOut, keyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	fmt.Fprintf(cg.output, "\nSelf-signed certificate generated:\n")
	fmt.Fprintf(cg.output, "  Certificate: %s\n", *certOut)
	fmt.Fprintf(cg.output, "  Private Key: %s (mode 0600)\n", *keyOut)
	fmt.Fprintf(cg.output, "  Valid for:   %d days\n", *validDays)
	fmt.Fprintf(cg.output, "  Common Name: %s\n", *commonName)
	fmt.Fprintf(cg.output, "  Hosts (SANs): %s\n", *hosts)
	fmt.Fprintf(cg.output, "\nConfig snippet:\n")
	fmt.Fprintf(cg.output, "[server.tls]\nenabled = true\ncert_file = %q\nkey_file = %q\n", *certOut, *keyOut)
	return nil
}
