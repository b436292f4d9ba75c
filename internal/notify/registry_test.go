package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasedesk/internal/notify"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("register and get", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		sink := &mockSink{}
		reg.Register("sms_gateway", sink)

		got, ok := reg.Get("sms_gateway")
		require.True(t, ok)
		assert.Equal(t, sink, got)
	})

	t.Run("get unregistered returns false", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()

		_, ok := reg.Get("unknown")
		assert.False(t, ok)
	})

	t.Run("register overwrites previous", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		first := &mockSink{}
		second := &mockSink{}
		reg.Register("email_provider", first)
		reg.Register("email_provider", second)

		got, ok := reg.Get("email_provider")
		require.True(t, ok)
		assert.Same(t, second, got)
	})
}
