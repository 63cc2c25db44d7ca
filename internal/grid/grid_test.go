package grid

import (
	"strings"
	"testing"
)

func TestNewDesktop(t *testing.T) {
	g := NewDesktop()
	if g.Len() != 24 {
		t.Fatalf("Len() = %d, want 24", g.Len())
	}
	if !g.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	idx, ok := g.FirstEmpty()
	if !ok || idx != 0 {
		t.Errorf("FirstEmpty() = %d, %v, want 0, true", idx, ok)
	}
}

func TestGrid_OutOfRangePanics(t *testing.T) {
	g := New(4)
	for _, idx := range []int{-1, 4, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Get(%d) did not panic", idx)
				}
			}()
			g.Get(idx)
		}()
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Set(%d) did not panic", idx)
				}
			}()
			g.Set(idx, Link{ID: "x"})
		}()
	}
}

func TestGrid_FirstEmptyAscending(t *testing.T) {
	g := New(4)
	g.Set(0, Link{ID: "a"})
	g.Set(2, Link{ID: "b"})

	idx, ok := g.FirstEmpty()
	if !ok || idx != 1 {
		t.Errorf("FirstEmpty() = %d, %v, want 1, true", idx, ok)
	}

	g.Set(1, Link{ID: "c"})
	g.Set(3, Link{ID: "d"})
	if _, ok := g.FirstEmpty(); ok {
		t.Error("FirstEmpty() on full grid reported a slot")
	}
}

func TestGrid_IndexOfAndLocate(t *testing.T) {
	g := NewDesktop()
	g.Set(5, Link{ID: "solo"})
	g.Set(7, Folder{ID: "f", Size: Size2x2, Links: []Link{{ID: "in1"}, {ID: "in2"}}})

	if idx, ok := g.IndexOf("solo"); !ok || idx != 5 {
		t.Errorf("IndexOf(solo) = %d, %v", idx, ok)
	}
	if _, ok := g.IndexOf("in2"); ok {
		t.Error("IndexOf should not match links inside folders")
	}

	loc, ok := g.Locate("in2")
	if !ok {
		t.Fatal("Locate(in2) not found")
	}
	if !loc.InFolder || loc.FolderID != "f" || loc.Slot != 7 || loc.LinkIndex != 1 {
		t.Errorf("Locate(in2) = %+v", loc)
	}

	loc, ok = g.Locate("f")
	if !ok || loc.InFolder || loc.Slot != 7 {
		t.Errorf("Locate(f) = %+v, %v", loc, ok)
	}

	if _, ok := g.Locate("missing"); ok {
		t.Error("Locate(missing) reported found")
	}
}

func TestGrid_CloneIsDeep(t *testing.T) {
	g := NewDesktop()
	g.Set(0, Folder{ID: "f", Links: []Link{{ID: "a"}}})

	c := g.Clone()
	c.Set(1, Link{ID: "b"})
	f, _ := AsFolder(c.Get(0))
	f.Links[0].Title = "changed"

	if g.Get(1) != nil {
		t.Error("Set on clone leaked into original")
	}
	orig, _ := AsFolder(g.Get(0))
	if orig.Links[0].Title != "" {
		t.Error("folder links share a backing array with the clone")
	}
}

func TestGrid_Validate(t *testing.T) {
	g := NewDesktop()
	g.Set(0, Link{ID: "a"})
	g.Set(1, Folder{ID: "f", Links: []Link{{ID: "b"}}})
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	g.Set(2, Link{ID: "b"})
	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate id") {
		t.Errorf("Validate() = %v, want duplicate id error", err)
	}

	g = NewDesktop()
	g.Set(0, Link{})
	if err := g.Validate(); err == nil {
		t.Error("Validate() accepted an empty id")
	}
}

func TestFolder_DisplaySlots(t *testing.T) {
	tests := []struct {
		name      string
		size      SizeMode
		links     int
		wantShown int
		wantHid   int
	}{
		{"2x2 empty", Size2x2, 0, 0, 0},
		{"2x2 partial", Size2x2, 2, 2, 0},
		{"2x2 overflow", Size2x2, 7, 4, 3},
		{"3x3 full", Size3x3, 9, 9, 0},
		{"unset size renders 3x3", "", 5, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Folder{ID: "f", Size: tt.size}
			for i := 0; i < tt.links; i++ {
				f.Links = append(f.Links, Link{ID: string(rune('a' + i))})
			}

			slots := f.DisplaySlots()
			if len(slots) != tt.size.Capacity() {
				t.Fatalf("len(DisplaySlots()) = %d, want %d", len(slots), tt.size.Capacity())
			}
			shown := 0
			for _, s := range slots {
				if s != nil {
					shown++
				}
			}
			if shown != tt.wantShown {
				t.Errorf("shown = %d, want %d", shown, tt.wantShown)
			}
			if len(f.Hidden()) != tt.wantHid {
				t.Errorf("Hidden() = %d, want %d", len(f.Hidden()), tt.wantHid)
			}
			if len(f.Links) != tt.links {
				t.Errorf("links were truncated: %d, want %d", len(f.Links), tt.links)
			}
		})
	}
}

func TestParseSizeMode(t *testing.T) {
	if s, err := ParseSizeMode(""); err != nil || s != Size3x3 {
		t.Errorf("ParseSizeMode(\"\") = %q, %v", s, err)
	}
	if s, err := ParseSizeMode("2x2"); err != nil || s != Size2x2 {
		t.Errorf("ParseSizeMode(2x2) = %q, %v", s, err)
	}
	if _, err := ParseSizeMode("4x4"); err == nil {
		t.Error("ParseSizeMode(4x4) should fail")
	}
}

func TestSeed(t *testing.T) {
	g := Seed()
	if g.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", g.Count())
	}
	if l, ok := AsLink(g.Get(2)); !ok || l.ID != "single-link" {
		t.Errorf("slot 2 = %#v, want single-link", g.Get(2))
	}
	if f, ok := AsFolder(g.Get(3)); !ok || f.Size != Size2x2 || len(f.Links) != 4 {
		t.Errorf("slot 3 = %#v, want 2x2 folder with 4 links", g.Get(3))
	}
	if f, ok := AsFolder(g.Get(4)); !ok || f.Size != Size3x3 || len(f.Links) != 9 {
		t.Errorf("slot 4 = %#v, want 3x3 folder with 9 links", g.Get(4))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("seeded grid invalid: %v", err)
	}
}

func TestDockLinks(t *testing.T) {
	dock := DockLinks()
	if len(dock) != DockSize {
		t.Fatalf("len(DockLinks()) = %d, want %d", len(dock), DockSize)
	}
	if dock[0].ID != "g1" || dock[4].ID != "t1" || dock[6].ID != "t3" {
		t.Errorf("dock order = %v", dock)
	}
}

func TestGlyph(t *testing.T) {
	if Glyph("Mail") != glyphs["Mail"] {
		t.Errorf("Glyph(Mail) = %q", Glyph("Mail"))
	}
	if Glyph("NoSuchIcon") != Glyph(DefaultIcon) {
		t.Error("unknown icon did not fall back to the default glyph")
	}
	if Glyph("") != Glyph(DefaultIcon) {
		t.Error("empty icon did not fall back to the default glyph")
	}
	if len(IconNames()) != 12 {
		t.Errorf("IconNames() = %v", IconNames())
	}
}
