package utility

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCacheService()
	defer cache.(*memoryCacheService).Stop()

	if err := cache.Set(ctx, "k", 123, 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := cache.Get(ctx, "k"); v != "123" {
		t.Errorf("Get() = %q, want 123", v)
	}

	_ = cache.Set(ctx, "short", "x", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if v, _ := cache.Get(ctx, "short"); v != "" {
		t.Errorf("过期键 Get() = %q, want 空", v)
	}

	_ = cache.Delete(ctx, "k")
	if v, _ := cache.Get(ctx, "k"); v != "" {
		t.Errorf("删除后 Get() = %q, want 空", v)
	}
}

func TestMemoryCache_ConcurrentIncrement(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCacheService()
	defer cache.(*memoryCacheService).Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Increment(ctx, "counter"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if v, _ := cache.Get(ctx, "counter"); v != "50" {
		t.Errorf("并发递增结果 = %q, want 50", v)
	}
}

func TestMemoryCache_ScanAndGetAndDeleteMany(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCacheService()
	defer cache.(*memoryCacheService).Stop()

	_, _ = cache.Increment(ctx, "view:1")
	_, _ = cache.Increment(ctx, "view:1")
	_, _ = cache.Increment(ctx, "view:2")
	_ = cache.Set(ctx, "other", "x", 0)

	keys, err := cache.Scan(ctx, "view:*")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "view:1" || keys[1] != "view:2" {
		t.Fatalf("Scan() = %v", keys)
	}

	got, err := cache.GetAndDeleteMany(ctx, keys)
	if err != nil {
		t.Fatal(err)
	}
	if got["view:1"] != 2 || got["view:2"] != 1 {
		t.Errorf("GetAndDeleteMany() = %v", got)
	}
	if rest, _ := cache.Scan(ctx, "view:*"); len(rest) != 0 {
		t.Errorf("读取后键应被删除, 剩余 %v", rest)
	}
}
