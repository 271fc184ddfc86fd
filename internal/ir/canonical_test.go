package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{
		"rows":   []any{},
		"header": []any{"h"},
		"name":   "s",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"header":["h"],"name":"s","rows":[]}`, string(b))
}

func TestMarshalCanonical_Values(t *testing.T) {
	b, err := MarshalCanonical([]Value{Int(10), String("Al")})
	require.NoError(t, err)
	assert.Equal(t, `[10,"Al"]`, string(b))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	b, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(b))
}

func TestMarshalCanonical_NormalizesNFC(t *testing.T) {
	// "é" as 'e' + combining acute must serialize the same as the
	// precomposed form.
	decomposed := "e\u0301"
	precomposed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_RejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{nil})
	assert.Error(t, err)
}
