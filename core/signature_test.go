package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSignatureError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain failure", errors.New("connection refused"), false},
		{"verification marker", errors.New("certificate signature could not be verified"), true},
		{"invalid signature marker", errors.New("Invalid signature from replica"), true},
		{"curve marker", errors.New("EcdsaP256 verification failed"), true},
		{"delegation marker", errors.New("delegation has expired"), true},
		{"marker survives wrapping", fmt.Errorf("query failed: %w", errors.New("Invalid signature")), true},
		{"transport 400 with signature", &TransportError{Status: 400, Message: "Signature check failed"}, true},
		{"transport 400 without signature", &TransportError{Status: 400, Message: "malformed request"}, false},
		{"transport 500 plain signature mention", &TransportError{Status: 500, Message: "signature backend down"}, false},
		{"transport 500 with marker text", &TransportError{Status: 500, Message: "Invalid signature"}, true},
		{"wrapped transport error", fmt.Errorf("call: %w", &TransportError{Status: 400, Message: "bad signature"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSignatureError(tt.err))
		})
	}
}
