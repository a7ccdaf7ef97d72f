package window

import "testing"

func TestComputeGeometryAnchorsBottomRight(t *testing.T) {
	g := ComputeGeometry(WorkArea{Cols: 120, Rows: 40}, Dimensions{})
	if g.Width != DefaultWidth || g.Height != DefaultHeight {
		t.Fatalf("expected default size, got %+v", g)
	}
	if g.X != 120-DefaultWidth-DefaultMargin {
		t.Fatalf("expected right anchor, got x=%d", g.X)
	}
	if g.Y != 40-DefaultHeight-DefaultMargin {
		t.Fatalf("expected bottom anchor, got y=%d", g.Y)
	}
}

func TestComputeGeometryHonorsExplicitDimensions(t *testing.T) {
	g := ComputeGeometry(WorkArea{Cols: 200, Rows: 60}, Dimensions{Width: 100, Height: 30, Margin: 5})
	want := Geometry{X: 95, Y: 25, Width: 100, Height: 30}
	if g != want {
		t.Fatalf("got %+v, want %+v", g, want)
	}
}

func TestComputeGeometryShrinksToSmallWorkArea(t *testing.T) {
	g := ComputeGeometry(WorkArea{Cols: 60, Rows: 16}, Dimensions{})
	if g.Width > 60 || g.Height > 16 {
		t.Fatalf("bubble larger than work area: %+v", g)
	}
	if g.X < 0 || g.Y < 0 {
		t.Fatalf("negative origin: %+v", g)
	}
	if g.X+g.Width > 60 || g.Y+g.Height > 16 {
		t.Fatalf("bubble escapes work area: %+v", g)
	}
}

func TestComputeGeometryTinyWorkAreaStillPositive(t *testing.T) {
	g := ComputeGeometry(WorkArea{Cols: 10, Rows: 4}, Dimensions{})
	if g.Width <= 0 || g.Height <= 0 {
		t.Fatalf("expected positive dimensions, got %+v", g)
	}
	if g.X < 0 || g.Y < 0 {
		t.Fatalf("negative origin: %+v", g)
	}
}

func TestComputeGeometryZeroMarginAllowed(t *testing.T) {
	g := ComputeGeometry(WorkArea{Cols: 80, Rows: 24}, Dimensions{Width: 80, Height: 24, Margin: 0})
	want := Geometry{X: 0, Y: 0, Width: 80, Height: 24}
	if g != want {
		t.Fatalf("got %+v, want %+v", g, want)
	}
}
