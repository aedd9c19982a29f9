package jwt

import (
	"bytes"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Service signs and validates compact JWS tokens with a single algorithm
type Service struct {
	keys       keySet
	issuer     string
	expiration time.Duration
}

// Config selects the algorithm: a Secret means HS256, key paths mean RS256
type Config struct {
	PrivateKeyPath string
	PublicKeyPath  string
	// Secret is stretched with HKDF-SHA256 before use
	Secret         string
	Issuer         string
	ExpirationMins int
}

func NewService(cfg Config) (*Service, error) {
	svc := &Service{
		issuer:     cfg.Issuer,
		expiration: time.Duration(cfg.ExpirationMins) * time.Minute,
	}

	if cfg.Secret != "" {
		key, err := deriveKey(cfg.Secret)
		if err != nil {
			return nil, err
		}
		svc.keys = key
		return svc, nil
	}

	keys, err := loadRSAKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, err
	}
	svc.keys = keys
	return svc, nil
}

// NewTestService returns an RS256 service around an in-memory key
func NewTestService(privateKey *rsa.PrivateKey, issuer string, expiration time.Duration) *Service {
	return &Service{
		keys:       rsaKeys{private: privateKey, public: &privateKey.PublicKey},
		issuer:     issuer,
		expiration: expiration,
	}
}

// NewTestHMACService returns an HS256 service. It panics if the key cannot
// be derived.
func NewTestHMACService(secret, issuer string, expiration time.Duration) *Service {
	key, err := deriveKey(secret)
	if err != nil {
		panic(err)
	}
	return &Service{keys: key, issuer: issuer, expiration: expiration}
}

// Algorithm reports the JWS alg; a service without keys reports RS256
func (s *Service) Algorithm() string {
	if s.keys == nil {
		return AlgRS256
	}
	return s.keys.alg()
}

func (s *Service) GetExpiration() time.Duration {
	return s.expiration
}

// Sign stamps issuer and times onto claims and returns the compact token.
// A non-zero ExpiresAt is kept.
func (s *Service) Sign(claims Claims) (string, error) {
	if s.keys == nil || !s.keys.canSign() {
		return "", ErrInvalidKey
	}

	now := time.Now()
	claims.Issuer = s.issuer
	claims.IssuedAt = now.Unix()
	claims.NotBefore = now.Unix()
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = now.Add(s.expiration).Unix()
	}

	header, err := json.Marshal(struct {
		Alg string `json:"alg"`
		Typ string `json:"typ"`
	}{s.keys.alg(), "JWT"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signingInput := base64URLEncode(header) + "." + base64URLEncode(payload)
	signature, err := s.keys.sign([]byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	return signingInput + "." + base64URLEncode(signature), nil
}

// Validate checks structure, algorithm, signature, time window and issuer,
// in that order
func (s *Service) Validate(token string) (*Claims, error) {
	if s.keys == nil || !s.keys.canVerify() {
		return nil, ErrInvalidKey
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, ErrInvalidToken
	}

	var header struct {
		Alg string `json:"alg"`
	}
	if err := decodeSegment(segments[0], &header); err != nil || header.Alg != s.keys.alg() {
		return nil, ErrInvalidToken
	}

	signature, err := base64URLDecode(segments[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	if err := s.keys.verify([]byte(segments[0]+"."+segments[1]), signature); err != nil {
		return nil, err
	}

	var claims Claims
	if err := decodeSegment(segments[1], &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	if claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func decodeSegment(segment string, v interface{}) error {
	raw, err := base64URLDecode(segment)
	if err != nil {
		return err
	}
	return json.NewDecoder(bytes.NewReader(raw)).Decode(v)
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode accepts segments with or without padding
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
