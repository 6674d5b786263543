package redis

import (
	"context"
	"testing"

	"useradmin/config"

	"github.com/stretchr/testify/assert"
)

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClientUnreachable(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
