package sync_test

import (
	"testing"

	"github.com/hbomb79/mediaprobe/pkg/sync"
	"github.com/stretchr/testify/assert"
)

func Test_TypedSyncMap(t *testing.T) {
	var m sync.TypedSyncMap[string, int]

	m.Store("a", 1)
	v, loaded := m.LoadOrStore("b", 2)
	assert.False(t, loaded)
	assert.Equal(t, 2, v)

	v, loaded = m.LoadOrStore("a", 10)
	assert.True(t, loaded)
	assert.Equal(t, 1, v)

	seen := map[string]int{}
	m.Range(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)

	v, loaded = m.LoadAndDelete("a")
	assert.True(t, loaded)
	assert.Equal(t, 1, v)

	m.Delete("b")
	_, ok := m.Load("b")
	assert.False(t, ok)
}
