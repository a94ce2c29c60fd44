package cache

import (
	"testing"

	"github.com/dgb173/Masivo/internal/pkg/config"
)

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(config.RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected a connection error")
	}
}
