package core

import (
	"errors"
	"strings"
)

// signatureMarkers are the verbatim substrings boundary nodes and
// ledgers emit for an unverifiable signature or an invalid/expired
// delegation. This is an allow-list inferred from observed provider
// behavior, not a documented contract.
var signatureMarkers = []string{
	"signature could not be verified",
	"Invalid signature",
	"EcdsaP256",
	"delegation",
}

// IsSignatureError reports whether err indicates that the current
// delegated credential is invalid or expired. It is the single place
// free-text error classification happens; replace with structured
// codes if the collaborators ever provide them.
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, marker := range signatureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Status == 400 && strings.Contains(strings.ToLower(te.Message), "signature")
	}

	return false
}
