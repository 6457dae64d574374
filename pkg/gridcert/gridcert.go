// Package gridcert locates the X.509 client certificate and private key
// used to authenticate against grid services.
package gridcert

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Environment variables consulted by Resolver.
const (
	EnvProxy = "X509_USER_PROXY"
	EnvKey   = "X509_USER_KEY"
	EnvCert  = "X509_USER_CERT"
	EnvHome  = "HOME"
)

const (
	globusDir      = ".globus"
	globusKeyFile  = "userkey.pem"
	globusCertFile = "usercert.pem"
)

var (
	// ErrNoPrivateKey is returned when no private key file was found.
	ErrNoPrivateKey = errors.New("no certificate private key file found")
	// ErrNoCertificate is returned when no certificate file was found.
	ErrNoCertificate = errors.New("no certificate public key file found")
)

// Pair is a pair of paths to the PEM-encoded private key and certificate.
// For a proxy certificate both fields point to the same file.
type Pair struct {
	Key  string
	Cert string
}

// Resolver finds a usable Pair. Zero value reads the process environment
// and file system.
type Resolver struct {
	// Getenv returns the value of the environment variable, os.Getenv
	// if nil.
	Getenv func(string) string
	// HomeDir is used when HOME is unset, homedir.Dir if nil.
	HomeDir func() (string, error)
}

// Resolve returns the first existing key and certificate in the order:
//   - X509_USER_PROXY for both;
//   - X509_USER_KEY and X509_USER_CERT individually;
//   - ~/.globus/userkey.pem and ~/.globus/usercert.pem.
//
// Returns ErrNoPrivateKey or ErrNoCertificate if any of them stays unknown.
func (r Resolver) Resolve() (Pair, error) {
	var p Pair

	if proxy := r.getenv(EnvProxy); exists(proxy) {
		p.Key, p.Cert = proxy, proxy
	}

	if p.Key == "" {
		if key := r.getenv(EnvKey); exists(key) {
			p.Key = key
		}
	}

	if p.Cert == "" {
		if cert := r.getenv(EnvCert); exists(cert) {
			p.Cert = cert
		}
	}

	if p.Key == "" || p.Cert == "" {
		if home, err := r.home(); err == nil && home != "" {
			if key := filepath.Join(home, globusDir, globusKeyFile); p.Key == "" && exists(key) {
				p.Key = key
			}

			if cert := filepath.Join(home, globusDir, globusCertFile); p.Cert == "" && exists(cert) {
				p.Cert = cert
			}
		}
	}

	switch {
	case p.Key == "":
		return Pair{}, ErrNoPrivateKey
	case p.Cert == "":
		return Pair{}, ErrNoCertificate
	}

	return p, nil
}

func (r Resolver) getenv(name string) string {
	if r.Getenv != nil {
		return r.Getenv(name)
	}

	return os.Getenv(name)
}

func (r Resolver) home() (string, error) {
	if home := r.getenv(EnvHome); home != "" {
		return home, nil
	}

	if r.HomeDir != nil {
		return r.HomeDir()
	}

	return homedir.Dir()
}

func exists(path string) bool {
	if path == "" {
		return false
	}

	_, err := os.Stat(path)

	return err == nil
}
