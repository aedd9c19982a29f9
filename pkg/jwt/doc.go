// Package jwt provides JSON Web Token utilities for the PetzAdopt API.
//
// Tokens are signed either with RS256 (RSA key pair on disk) or with HS256
// using a key derived from a shared secret via HKDF-SHA256. A service holds
// exactly one of the two and rejects tokens whose header names the other.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    Secret:         os.Getenv("ACCESS_TOKEN_SECRET"),
//	    Issuer:         "petzadopt",
//	    ExpirationMins: 60,
//	})
//
//	token, err := svc.Sign(jwt.Claims{Subject: email, Email: email, Name: name})
//	claims, err := svc.Validate(token)
//
// Key pairs for RS256 are created with GenerateKeyPair.
package jwt
