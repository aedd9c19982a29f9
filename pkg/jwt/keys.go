package jwt

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

// Signing algorithms
const (
	AlgRS256 = "RS256"
	AlgHS256 = "HS256"
)

// hkdfInfo binds derived HS256 keys to this use
const hkdfInfo = "petzadopt access token v1"

// keySet signs and verifies with one algorithm. Either half may be missing,
// e.g. a verifier built from a public key alone.
type keySet interface {
	alg() string
	canSign() bool
	canVerify() bool
	sign(message []byte) ([]byte, error)
	verify(message, signature []byte) error
}

type hmacKey []byte

func (k hmacKey) alg() string     { return AlgHS256 }
func (k hmacKey) canSign() bool   { return len(k) > 0 }
func (k hmacKey) canVerify() bool { return len(k) > 0 }

func (k hmacKey) sign(message []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, k)
	mac.Write(message)
	return mac.Sum(nil), nil
}

func (k hmacKey) verify(message, signature []byte) error {
	expected, _ := k.sign(message)
	if !hmac.Equal(expected, signature) {
		return ErrInvalidSignature
	}
	return nil
}

type rsaKeys struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

func (k rsaKeys) alg() string     { return AlgRS256 }
func (k rsaKeys) canSign() bool   { return k.private != nil }
func (k rsaKeys) canVerify() bool { return k.public != nil }

func (k rsaKeys) sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return rsa.SignPKCS1v15(rand.Reader, k.private, crypto.SHA256, digest[:])
}

func (k rsaKeys) verify(message, signature []byte) error {
	digest := sha256.Sum256(message)
	if rsa.VerifyPKCS1v15(k.public, crypto.SHA256, digest[:], signature) != nil {
		return ErrInvalidSignature
	}
	return nil
}

// deriveKey stretches a shared secret into a 32-byte HS256 key
func deriveKey(secret string) (hmacKey, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// loadRSAKeys reads a PKCS#1 private key, or failing that a PKIX public key.
// The private key wins when both paths are set.
func loadRSAKeys(privatePath, publicPath string) (rsaKeys, error) {
	if privatePath != "" {
		block, err := readPEM(privatePath)
		if err != nil {
			return rsaKeys{}, fmt.Errorf("failed to load private key: %w", err)
		}
		private, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return rsaKeys{}, fmt.Errorf("failed to load private key: %w", err)
		}
		return rsaKeys{private: private, public: &private.PublicKey}, nil
	}

	if publicPath == "" {
		return rsaKeys{}, nil
	}
	block, err := readPEM(publicPath)
	if err != nil {
		return rsaKeys{}, fmt.Errorf("failed to load public key: %w", err)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return rsaKeys{}, fmt.Errorf("failed to load public key: %w", err)
	}
	public, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return rsaKeys{}, fmt.Errorf("failed to load public key: %s holds %T, not RSA", publicPath, parsed)
	}
	return rsaKeys{public: public}, nil
}

func readPEM(path string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block", path)
	}
	return block, nil
}

// GenerateKeyPair writes a fresh 2048-bit RSA key pair. The private key file
// is readable by the owner only.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	files := []struct {
		path  string
		block *pem.Block
		mode  os.FileMode
	}{
		{privateKeyPath, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(private)}, 0o600},
		{publicKeyPath, &pem.Block{Type: "PUBLIC KEY", Bytes: publicDER}, 0o644},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, pem.EncodeToMemory(f.block), f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}
