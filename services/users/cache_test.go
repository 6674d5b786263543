package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReplace(t *testing.T) {
	c := NewCache()
	users := seedUsers()
	c.Replace(users)

	users[0].Username = "mutated"
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 3, c.Len())
}

func TestCacheAppendKeepsOrder(t *testing.T) {
	c := NewCache()
	c.Replace(seedUsers())
	c.Append(User{ID: 9, Username: "zed"})

	all := c.All()
	require.Len(t, all, 4)
	assert.Equal(t, int64(9), all[3].ID)
}

func TestCacheReplaceByID(t *testing.T) {
	c := NewCache()
	c.Replace(seedUsers())

	assert.True(t, c.ReplaceByID(User{ID: 2, Username: "robert"}))
	assert.False(t, c.ReplaceByID(User{ID: 42}))

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "robert", all[1].Username)
	assert.Equal(t, "carol", all[2].Username)
}

func TestCacheRemove(t *testing.T) {
	c := NewCache()
	c.Replace(seedUsers())
	snapshot := c.All()

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 2, c.Len())

	// Earlier snapshots are unaffected
	assert.Equal(t, "alice", snapshot[0].Username)
	_, ok := c.Get(1)
	assert.False(t, ok)
}
