package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veridian/pkg/domain-errors"
)

func TestParseDID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DID
		wantErr bool
	}{
		{name: "valid example did", input: "did:example:alice", want: "did:example:alice"},
		{name: "valid ethr did", input: "did:ethr:0xab12cd34", want: "did:ethr:0xab12cd34"},
		{name: "trims whitespace", input: "  did:example:alice  ", want: "did:example:alice"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "did:a:b", wantErr: true},
		{name: "missing method", input: "did::alice123", wantErr: true},
		{name: "missing id segment", input: "did:example:", wantErr: true},
		{name: "wrong scheme", input: "key:example:alice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCredentialID(t *testing.T) {
	got, err := ParseCredentialID(" cred_001 ")
	require.NoError(t, err)
	assert.Equal(t, CredentialID("cred_001"), got)

	_, err = ParseCredentialID("   ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParsePrincipal(t *testing.T) {
	got, err := ParsePrincipal("0x1234abcd")
	require.NoError(t, err)
	assert.Equal(t, Principal("0x1234abcd"), got)

	_, err = ParsePrincipal("")
	require.Error(t, err)
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())
}
