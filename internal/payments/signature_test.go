package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "flk3409refn54t54t*FNJRET"

func TestSign_KnownVector(t *testing.T) {
	fields := []string{"freeordertest", "1100", "1415379863"}
	assert.Equal(t, "25e49eef539ea08c6b3f836b5ea6e89b", Sign(fields, testSecret))
}

func TestSign_FieldOrderMatters(t *testing.T) {
	a := Sign([]string{"a", "b", "c"}, testSecret)
	b := Sign([]string{"c", "b", "a"}, testSecret)
	assert.NotEqual(t, a, b)
}

func TestVerifySignature(t *testing.T) {
	fields := []string{"abc123", "accept", "1415379863"}
	signature := Sign(fields, testSecret)

	assert.True(t, VerifySignature(fields, testSecret, signature))
	assert.Equal(t, "725a5982fce9f530da4b047690fc14fe", signature)
}

func TestVerifySignature_Tampered(t *testing.T) {
	fields := []string{"abc123", "accept", "1415379863"}
	signature := Sign(fields, testSecret)

	assert.False(t, VerifySignature([]string{"abc124", "accept", "1415379863"}, testSecret, signature))
	assert.False(t, VerifySignature(fields, "wrong-secret", signature))
	assert.False(t, VerifySignature(fields, testSecret, signature[:len(signature)-1]+"0"))
	assert.False(t, VerifySignature(fields, testSecret, ""))
}
