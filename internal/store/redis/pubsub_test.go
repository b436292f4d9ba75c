package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasedesk/internal/domain"
	redisstore "github.com/gosuda/leasedesk/internal/store/redis"
)

func TestSessionKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "session:abc", redisstore.SessionKey("abc"))
	assert.Equal(t, redisstore.SessionKey("x"), redisstore.SessionKey("x"))
	assert.Equal(t, "user_sessions:42", redisstore.UserSessionsKey(42))
}

func TestPrincipalCodec(t *testing.T) {
	t.Parallel()

	p := &domain.Principal{ID: 7, Name: "Ada", Email: "ada@example.com", Role: domain.RoleLandlord}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		payload, err := redisstore.EncodePrincipal(p)
		require.NoError(t, err)

		got, err := redisstore.DecodePrincipal(payload)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("nil principal", func(t *testing.T) {
		t.Parallel()

		_, err := redisstore.EncodePrincipal(nil)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := redisstore.DecodePrincipal([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()

		_, err := redisstore.DecodePrincipal([]byte(`{"id":1,"role":"root"}`))
		assert.Error(t, err)
	})
}

func TestNew_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := redisstore.New(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
