package backend

import (
	"testing"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/compose"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

type fakeBackend struct{ name string }

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Init() error  { return nil }
func (f *fakeBackend) Close()       {}
func (f *fakeBackend) Render(*easel.Pixmap, *state.Canvas, *layer.FontRegistry, compose.Options) error {
	return nil
}

func TestRegistry(t *testing.T) {
	Register("fake", func() Renderer { return &fakeBackend{name: "fake"} })
	defer Unregister("fake")

	if Get("fake") == nil {
		t.Fatal("registered backend not found")
	}
	found := false
	for _, name := range Available() {
		if name == "fake" {
			found = true
		}
	}
	if !found {
		t.Error("registered backend not listed")
	}

	Unregister("fake")
	if Get("fake") != nil {
		t.Error("unregistered backend still resolvable")
	}
}

func TestDefaultPrefersGPU(t *testing.T) {
	Register("gpu", func() Renderer { return &fakeBackend{name: "gpu"} })
	defer Unregister("gpu")

	if got := Default(); got == nil || got.Name() != "gpu" {
		t.Errorf("Default() = %v, want the gpu backend", got)
	}

	Unregister("gpu")
	if got := Default(); got == nil || got.Name() != Software {
		t.Errorf("Default() = %v, want the software fallback", got)
	}
}

func TestSoftwareRender(t *testing.T) {
	b := Get(Software)
	if b == nil {
		t.Fatal("software backend not registered")
	}

	c := state.NewCanvas(64, 64)
	c.Background = func() *easel.Pixmap {
		p := easel.NewPixmap(64, 64)
		p.Clear(easel.RGBA{R: 1, A: 1})
		return p
	}()
	target := easel.NewPixmap(64, 64)

	if err := b.Render(target, c, layer.NewFontRegistry(), compose.Options{}); err != ErrNotInitialized {
		t.Fatalf("Render before Init: err = %v, want ErrNotInitialized", err)
	}
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if err := b.Render(target, c, layer.NewFontRegistry(), compose.Options{}); err != nil {
		t.Fatal(err)
	}
	if got := target.GetPixel(32, 32); got.R < 0.97 || got.A < 0.97 {
		t.Errorf("rendered pixel = %+v, want red background", got)
	}
}

func TestInitDefault(t *testing.T) {
	b, err := InitDefault()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if err := b.Render(easel.NewPixmap(8, 8), state.NewCanvas(8, 8), layer.NewFontRegistry(), compose.Options{}); err != nil {
		t.Error(err)
	}
}
