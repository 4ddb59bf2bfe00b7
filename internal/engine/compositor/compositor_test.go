package compositor

import (
	"errors"
	"testing"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

func TestBatchFlushesInSubmissionOrder(t *testing.T) {
	var flushed []int
	b := NewBatch("test", nil, func(v int) { flushed = append(flushed, v) })

	if b.Len() != 0 {
		t.Fatal("queue not empty before Begin")
	}
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := b.Add(i); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	n, err := b.End()
	if err != nil || n != 3 {
		t.Fatalf("End = %d, %v; want 3, nil", n, err)
	}
	if len(flushed) != 3 || flushed[0] != 1 || flushed[2] != 3 {
		t.Errorf("flushed = %v, want [1 2 3]", flushed)
	}
	if b.Len() != 0 || b.State() != Idle {
		t.Errorf("after End: len %d, state %s", b.Len(), b.State())
	}
}

func TestBatchRejectsMisuse(t *testing.T) {
	b := NewBatch[int]("test", nil, nil)

	if err := b.Add(1); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("Add outside bracket: err = %v", err)
	}
	if _, err := b.End(); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("End without Begin: err = %v", err)
	}
	_ = b.Begin()
	if err := b.Begin(); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("nested Begin: err = %v", err)
	}
}

func TestNoCrossFrameLeakage(t *testing.T) {
	var flushed int
	b := NewBatch("test", nil, func(int) { flushed++ })
	_ = b.Begin()
	_ = b.Add(1)
	if n := b.Abort(); n != 1 {
		t.Errorf("Abort discarded %d, want 1", n)
	}

	_ = b.Begin()
	if b.Len() != 0 {
		t.Error("aborted items leaked into the next bracket")
	}
	_, _ = b.End()
	if flushed != 0 {
		t.Errorf("aborted items were flushed: %d", flushed)
	}
}

func TestSetBracketsAreExclusive(t *testing.T) {
	var modes []raster.BlendMode
	var decals int
	s := NewSet(
		func(_ LightmapDraw, m raster.BlendMode) { modes = append(modes, m) },
		func(DecalDraw) { decals++ },
	)

	if err := s.Lightmaps.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := s.Decals.Begin(); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("decals began while lightmaps open: err = %v", err)
	}
	_ = s.Lightmaps.Add(LightmapDraw{ColorMult: raster.ColorRed})
	_, _ = s.Lightmaps.End()

	_ = s.Lightmaps2.Begin()
	_ = s.Lightmaps2.Add(LightmapDraw{})
	_, _ = s.Lightmaps2.End()

	if err := s.Decals.Begin(); err != nil {
		t.Fatalf("decals Begin after lightmaps closed: %v", err)
	}
	_ = s.Decals.Add(DecalDraw{})
	_, _ = s.Decals.End()

	if len(modes) != 2 || modes[0] != raster.BlendMultiply || modes[1] != raster.BlendAdditive {
		t.Errorf("lightmap modes = %v, want [multiply additive]", modes)
	}
	if decals != 1 {
		t.Errorf("decals flushed = %d, want 1", decals)
	}
}

func TestCloseOpenFlushes(t *testing.T) {
	var decals int
	s := NewSet(func(LightmapDraw, raster.BlendMode) {}, func(DecalDraw) { decals++ })
	if name, _ := s.CloseOpen(); name != "" {
		t.Errorf("CloseOpen with nothing open = %q", name)
	}

	_ = s.Decals.Begin()
	_ = s.Decals.Add(DecalDraw{})
	name, n := s.CloseOpen()
	if name != NameDecals || n != 1 || decals != 1 {
		t.Errorf("CloseOpen = %q, %d (flushed %d)", name, n, decals)
	}
	if s.Guard.Open() != "" {
		t.Error("guard still held")
	}
}
