package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKData_RoundTrip(t *testing.T) {
	kdata := NewKData()
	require.Len(t, kdata, KDataLen)

	encoded := EncodeKData(kdata)
	assert.False(t, strings.ContainsAny(encoded, "+/="))

	decoded, err := DecodeKData(encoded)
	require.NoError(t, err)
	assert.Equal(t, kdata, decoded)
}

func TestKData_PaddedInputTolerated(t *testing.T) {
	kdata := NewKData()
	decoded, err := DecodeKData(EncodeKData(kdata) + "=")
	require.NoError(t, err)
	assert.Equal(t, kdata, decoded)
}

func TestKData_Invalid(t *testing.T) {
	_, err := DecodeKData("")
	assert.ErrorIs(t, err, ErrKDataInvalidLen)

	_, err = DecodeKData("too-short")
	assert.ErrorIs(t, err, ErrKDataInvalidLen)

	_, err = DecodeKData(strings.Repeat("*", 43))
	assert.ErrorIs(t, err, ErrKDataInvalidLen)
}
