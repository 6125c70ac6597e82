package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelegationChainValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		chain *DelegationChain
		valid bool
	}{
		{
			name:  "nil chain counts valid",
			chain: nil,
			valid: true,
		},
		{
			name:  "empty chain counts valid",
			chain: &DelegationChain{},
			valid: true,
		},
		{
			name: "future expiry",
			chain: &DelegationChain{Delegations: []Delegation{
				{Expiration: now.Add(time.Hour)},
			}},
			valid: true,
		},
		{
			name: "expiry exactly now",
			chain: &DelegationChain{Delegations: []Delegation{
				{Expiration: now},
			}},
			valid: true,
		},
		{
			name: "expired first link",
			chain: &DelegationChain{Delegations: []Delegation{
				{Expiration: now.Add(-time.Second)},
			}},
			valid: false,
		},
		{
			name: "first link gates even when later links are fresh",
			chain: &DelegationChain{Delegations: []Delegation{
				{Expiration: now.Add(-time.Minute)},
				{Expiration: now.Add(24 * time.Hour)},
			}},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.chain.Valid(now))
		})
	}
}

func TestDelegationChainTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var nilChain *DelegationChain
	assert.Zero(t, nilChain.TimeRemaining(now))
	assert.Zero(t, (&DelegationChain{}).TimeRemaining(now))

	fresh := &DelegationChain{Delegations: []Delegation{{Expiration: now.Add(90 * time.Minute)}}}
	assert.Equal(t, 90*time.Minute, fresh.TimeRemaining(now))

	expired := &DelegationChain{Delegations: []Delegation{{Expiration: now.Add(-time.Hour)}}}
	assert.Zero(t, expired.TimeRemaining(now))
}
