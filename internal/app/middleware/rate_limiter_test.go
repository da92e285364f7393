package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllowsBurst(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	// 桶满时允许突发
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())

	// 桶空后拒绝
	assert.False(t, tb.Allow())
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(100, 1)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// 等待足够的填充时间后恢复
	time.Sleep(50 * time.Millisecond)
	assert.True(t, tb.Allow())
}
