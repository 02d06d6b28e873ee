package dump

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 2, color.NRGBA{R: 200, G: 10, B: 30, A: 128})
	return img
}

func TestDump(t *testing.T) {
	root := t.TempDir()
	d := New(root)
	if err := d.Dump("Vanilla/Vanilla/Shovel", testImage()); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if d.Written() != 1 {
		t.Errorf("Written = %d, want 1", d.Written())
	}

	base := filepath.Join(root, "Vanilla", "Vanilla", "Shovel")
	f, err := os.Open(base + ".png")
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	got, err := png.Decode(f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if c := color.NRGBAModel.Convert(got.At(1, 2)).(color.NRGBA); c.A != 128 || c.R != 200 {
		t.Errorf("png pixel = %v, want R=200 A=128", c)
	}

	f, err = os.Open(base + ".tiff")
	if err != nil {
		t.Fatalf("open tiff: %v", err)
	}
	got, err = tiff.Decode(f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("decode tiff: %v", err)
	}
	if got.Bounds().Dx() != 4 {
		t.Errorf("tiff width = %d, want 4", got.Bounds().Dx())
	}
}

func TestDumpFormat(t *testing.T) {
	root := t.TempDir()
	d := NewFormat(root, PNG)
	if err := d.Dump("Unknown/Mod/Item", testImage()); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	base := filepath.Join(root, "Unknown", "Mod", "Item")
	if _, err := os.Stat(base + ".png"); err != nil {
		t.Errorf("png missing: %v", err)
	}
	if _, err := os.Stat(base + ".tiff"); !os.IsNotExist(err) {
		t.Errorf("tiff stat = %v, want not exist", err)
	}
}

func TestPathRejectsEscapes(t *testing.T) {
	d := New(t.TempDir())
	for _, key := range []string{"", "/", "../x", "a/../../x"} {
		if _, err := d.Path(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Path(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
	if _, err := d.Path("/Vanilla/Vanilla/Box"); err != nil {
		t.Errorf("Path with leading slash: %v", err)
	}
}
