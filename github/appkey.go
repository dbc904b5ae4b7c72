package github

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// VerifyAppKey checks that privateKey is an RSA key GitHub will accept by
// signing a short-lived app JWT with it. Nothing is sent to GitHub.
func VerifyAppKey(appID int64, privateKey []byte) error {
	if appID == 0 {
		return fmt.Errorf("GitHub App ID is required")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKey)
	if err != nil {
		return fmt.Errorf("failed to parse GitHub App private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    strconv.FormatInt(appID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("failed to sign app token: %w", err)
	}

	// round-trip so a mismatched key pair is caught here too
	_, err = jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return fmt.Errorf("failed to verify app token: %w", err)
	}
	return nil
}
