package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitRegistry(t *testing.T) {
	reg := NewCircuitRegistry([]string{"age_verification", "credential_ownership", ""})

	assert.True(t, reg.Recognized("age_verification"))
	assert.True(t, reg.Recognized("credential_ownership"))
	assert.False(t, reg.Recognized("selective_disclosure"))
	assert.False(t, reg.Recognized(""))

	assert.Equal(t, []string{"age_verification", "credential_ownership"}, reg.List())
}
