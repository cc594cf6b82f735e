package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationTokenRoundTrip(t *testing.T) {
	token := DeriveConfirmationToken("meme@naver.com")
	require.Len(t, token, 64)
	assert.NoError(t, CheckConfirmation("meme@naver.com", token))
}

func TestConfirmationTokenIsDeterministic(t *testing.T) {
	assert.Equal(t,
		DeriveConfirmationToken("meme@naver.com"),
		DeriveConfirmationToken("meme@naver.com"))
}

func TestCheckConfirmationRejectsForeignToken(t *testing.T) {
	token := DeriveConfirmationToken("minsu@naver.com")
	assert.ErrorIs(t, CheckConfirmation("meme@naver.com", token), ErrNotValidConfirmation)
	assert.ErrorIs(t, CheckConfirmation("meme@naver.com", "not-a-digest"), ErrNotValidConfirmation)
}
