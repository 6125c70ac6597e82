package provider

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JoshDFN/cleardeck/core"
)

// delegationClaims is one chain link in token form: the registered
// expiry plus the delegated session public key.
type delegationClaims struct {
	jwt.RegisteredClaims
	DelegatedKey string `json:"dpk"`
}

// sessionRecord is the persisted shape of a delegated session.
type sessionRecord struct {
	SessionKey  []byte   `json:"session_key"`
	RootKey     []byte   `json:"root_key"`
	Delegations []string `json:"delegations"`
}

// NewDelegationToken issues a single chain-link token delegating to
// sessionPubKey until expires, signed with the issuer key. Used by the
// local development provider and by tests.
func NewDelegationToken(sessionPubKey []byte, expires time.Time, issuerKey ed25519.PrivateKey) (string, error) {
	claims := delegationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		DelegatedKey: base64.StdEncoding.EncodeToString(sessionPubKey),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(issuerKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign delegation: %w", err)
	}
	return signed, nil
}

// decodeChain reads the expiry metadata out of the chain-link tokens.
// The provider's signatures are verified by the services receiving the
// chain, not here; this client only needs the advisory expiry.
func decodeChain(tokens []string) (*core.DelegationChain, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	parser := jwt.NewParser()
	chain := &core.DelegationChain{Delegations: make([]core.Delegation, 0, len(tokens))}
	for _, raw := range tokens {
		var claims delegationClaims
		if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
			return nil, fmt.Errorf("malformed delegation token: %w", err)
		}
		if claims.ExpiresAt == nil {
			return nil, fmt.Errorf("delegation token carries no expiry")
		}
		pubKey, err := base64.StdEncoding.DecodeString(claims.DelegatedKey)
		if err != nil {
			return nil, fmt.Errorf("malformed delegated key: %w", err)
		}
		chain.Delegations = append(chain.Delegations, core.Delegation{
			PubKey:     pubKey,
			Expiration: claims.ExpiresAt.Time,
		})
	}
	return chain, nil
}

func encodeRecord(record sessionRecord) ([]byte, error) {
	blob, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session record: %w", err)
	}
	return blob, nil
}

func decodeRecord(blob []byte) (sessionRecord, error) {
	var record sessionRecord
	if err := json.Unmarshal(blob, &record); err != nil {
		return sessionRecord{}, fmt.Errorf("failed to decode session record: %w", err)
	}
	if len(record.SessionKey) != ed25519.PrivateKeySize {
		return sessionRecord{}, fmt.Errorf("session record carries a malformed key")
	}
	return record, nil
}
