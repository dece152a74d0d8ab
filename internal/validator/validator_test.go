package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateString(t *testing.T) {
	require.NoError(t, ValidateString("hello", 1, 10))
	require.Error(t, ValidateString("", 1, 10))
	require.Error(t, ValidateString("this is way too long", 1, 10))
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Secret123"))
	require.Error(t, ValidatePassword("short1A"))
	require.Error(t, ValidatePassword("nouppercase123"))
	require.Error(t, ValidatePassword("NOLOWERCASE123"))
	require.Error(t, ValidatePassword("NoDigitsHere"))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("user@example.com"))
	require.Error(t, ValidateEmail("nope"))
	require.Error(t, ValidateEmail("@no-local-part.com"))
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateLatitude(21.0285))
	require.Error(t, ValidateLatitude(-91))
	require.NoError(t, ValidateLongitude(105.8542))
	require.Error(t, ValidateLongitude(181))
}

func TestValidatePrice(t *testing.T) {
	require.NoError(t, ValidatePrice(0))
	require.NoError(t, ValidatePrice(150050))
	require.Error(t, ValidatePrice(-1))
}
