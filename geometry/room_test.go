package geometry

import "testing"

func TestFloorAreaSqM(t *testing.T) {
	if got := FloorAreaSqM(400, 350); got != 14.00 {
		t.Fatalf("expected 14.00, got %v", got)
	}
	if got := FloorAreaSqM(333, 285); got != 9.49 {
		t.Fatalf("expected 9.49, got %v", got)
	}
}

func TestWallAreaSqM(t *testing.T) {
	if got := WallAreaSqM(400, 350, 2.4); got != 36.00 {
		t.Fatalf("expected 36.00, got %v", got)
	}
	if got := WallAreaSqM(400, 350, 2.6); got != 39.00 {
		t.Fatalf("expected 39.00, got %v", got)
	}
}

func TestCeilingHeightM(t *testing.T) {
	if got := CeilingHeightM(nil); got != DefaultCeilingHeightM {
		t.Fatalf("expected default ceiling, got %v", got)
	}
	h := 260
	if got := CeilingHeightM(&h); got != 2.6 {
		t.Fatalf("expected 2.6, got %v", got)
	}
	zero := 0
	if got := CeilingHeightM(&zero); got != DefaultCeilingHeightM {
		t.Fatalf("zero height should fall back to default, got %v", got)
	}
}
