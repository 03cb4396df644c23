package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Password(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	u := &User{Password: hash}
	assert.True(t, u.VerifyPassword("s3cret"))
	assert.False(t, u.VerifyPassword("wrong"))

	broken := &User{Password: "not-a-hash"}
	assert.False(t, broken.VerifyPassword("s3cret"))
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{Username: "ada", FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{Username: "ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "ada", (&User{Username: "ada"}).FullName())
}

func TestRefreshToken_Usable(t *testing.T) {
	now := time.Now()

	assert.True(t, (&RefreshToken{ExpiresAt: now.Add(time.Hour)}).Usable(now))
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(-time.Second)}).Usable(now))
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}).Usable(now))
}

func TestSetting_Expired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Setting{}).Expired(now))
	assert.True(t, (&Setting{ExpiresAt: &past}).Expired(now))
	assert.False(t, (&Setting{ExpiresAt: &future}).Expired(now))
}
