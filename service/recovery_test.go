package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshDFN/cleardeck/core"
)

type countingEnder struct{ logouts int }

func (c *countingEnder) Logout(ctx context.Context) { c.logouts++ }

func TestGuardPassesThroughSuccess(t *testing.T) {
	ender := &countingEnder{}

	out, err := Guard(context.Background(), ender, func(ctx context.Context) (string, error) {
		return "result", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "result", out)
	assert.Zero(t, ender.logouts)
}

func TestGuardPassesThroughUnrelatedFailure(t *testing.T) {
	ender := &countingEnder{}
	opErr := errors.New("table is full")

	_, err := Guard(context.Background(), ender, func(ctx context.Context) (int, error) {
		return 0, opErr
	}, nil)

	assert.ErrorIs(t, err, opErr)
	assert.Zero(t, ender.logouts)
}

func TestGuardForcesLogoutOnSignatureFailure(t *testing.T) {
	ender := &countingEnder{}
	var notifications []string

	out, err := Guard(context.Background(), ender, func(ctx context.Context) ([]byte, error) {
		return []byte("partial"), errors.New("certificate signature could not be verified")
	}, func(message string) {
		notifications = append(notifications, message)
	})

	assert.ErrorIs(t, err, core.ErrSessionExpired)
	assert.Nil(t, out, "partial results are discarded")
	assert.Equal(t, 1, ender.logouts)
	assert.Equal(t, []string{SessionExpiredMessage}, notifications)
}

func TestGuardSignatureFailureWithoutNotifier(t *testing.T) {
	ender := &countingEnder{}

	_, err := Guard(context.Background(), ender, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, &core.TransportError{Status: 400, Message: "bad signature"}
	}, nil)

	assert.ErrorIs(t, err, core.ErrSessionExpired)
	assert.Equal(t, 1, ender.logouts)
}
