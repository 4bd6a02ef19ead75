package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/config"
	"github.com/motorlot/recoengine/eventbus"
)

func TestKeepAliveSynthesizedOnSilence(t *testing.T) {
	b := testBus(t, config.WithKeepAliveInterval(20*time.Millisecond))
	b.Open("sess-1")
	sub := b.Subscribe("sess-1")
	_ = drain(t, sub, 1) // connection_established

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	evt, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, eventbus.TypeKeepAlive, evt.Type)
}
