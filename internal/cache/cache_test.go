package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key(ModeQA, "what is the total?", "document text")
	k2 := Key(ModeQA, "what is the total?", "document text")
	if k1 != k2 {
		t.Error("identical inputs must produce the same key")
	}

	if !strings.HasPrefix(k1, ModeQA+":") {
		t.Errorf("key %q should be namespaced by mode", k1)
	}

	if Key(ModeSummary, "what is the total?", "document text") == k1 {
		t.Error("different modes must produce different keys")
	}
	if Key(ModeQA, "what is the due date?", "document text") == k1 {
		t.Error("different questions must produce different keys")
	}
	if Key(ModeQA, "what is the total?", "changed text") == k1 {
		t.Error("changed document text must produce a different key")
	}
}

func TestKeyMultipleDocuments(t *testing.T) {
	k1 := Key(ModeHolistic, "compare", "doc a", "doc b")
	k2 := Key(ModeHolistic, "compare", "doc a", "doc b")
	if k1 != k2 {
		t.Error("identical document sets must produce the same key")
	}
	if Key(ModeHolistic, "compare", "doc b", "doc a") == k1 {
		t.Error("document order is part of the key")
	}
	if Key(ModeHolistic, "compare", "doc a") == k1 {
		t.Error("a different document set must produce a different key")
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	resp, err := c.GetResponse(ctx, "any-key")
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if resp != nil {
		t.Error("no-op cache must always miss")
	}

	if err := c.SetResponse(ctx, "any-key", &Response{Text: "x"}, time.Minute); err != nil {
		t.Errorf("SetResponse: %v", err)
	}

	// A write followed by a read is still a miss.
	resp, err = c.GetResponse(ctx, "any-key")
	if err != nil || resp != nil {
		t.Errorf("expected miss after write, got %v, %v", resp, err)
	}

	if err := c.InvalidateDocument(ctx, "doc-id"); err != nil {
		t.Errorf("InvalidateDocument: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
