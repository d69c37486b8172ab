package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestInitRedisNoAddr(t *testing.T) {
	Client = nil
	InitRedis(context.Background(), "")
	if Client != nil {
		t.Fatal("expected nil client without an address")
	}
}

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedis(context.Background(), mr.Addr())
	if Client == nil {
		t.Fatal("expected connected client")
	}
	Client = nil
}
