package utils

import (
	"testing"
	"time"
)

func TestCache_SetGetDelete(t *testing.T) {
	SetCache("test-token", "approve:car-1", 0)

	val, ok := GetCache("test-token")
	if !ok || val != "approve:car-1" {
		t.Errorf("GetCache() = (%q, %v), want (approve:car-1, true)", val, ok)
	}

	DeleteCache("test-token")
	if _, ok := GetCache("test-token"); ok {
		t.Error("删除后不应再命中")
	}
}

func TestCache_MissingKey(t *testing.T) {
	if _, ok := GetCache("never-set"); ok {
		t.Error("未写入的键不应命中")
	}
}

func TestCache_Expiry(t *testing.T) {
	SetCache("short-lived", "approve:car-2", 20*time.Millisecond)

	if _, ok := GetCache("short-lived"); !ok {
		t.Fatal("有效期内应当命中")
	}

	time.Sleep(30 * time.Millisecond)
	if val, ok := GetCache("short-lived"); ok {
		t.Errorf("过期后仍命中: %q", val)
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	// ttl <= 0 回退到默认有效期，不应立即过期
	SetCache("default-ttl", "value", -1)
	if _, ok := GetCache("default-ttl"); !ok {
		t.Error("默认有效期下应当命中")
	}
	DeleteCache("default-ttl")
}
