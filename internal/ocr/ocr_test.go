// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// fakeRunner records invocations and replies with canned output per tool.
type fakeRunner struct {
	outputs map[string][]byte
	errs    map[string]error
	calls   []string
	stdins  map[string][]byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if f.stdins == nil {
		f.stdins = make(map[string][]byte)
	}
	data, _ := io.ReadAll(stdin)
	f.stdins[name] = data
	if err := f.errs[name]; err != nil {
		return err
	}
	_, err := stdout.Write(f.outputs[name])
	return err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPoppler_Render(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"pdftoppm": pngBytes(t, 20, 30)}}

	img, err := Poppler{Runner: runner}.Render(context.Background(), []byte("%PDF"), 3, 72)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 20, 30), img.Bounds())
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pdftoppm -f 3 -l 3 -r 72 -png -singlefile fd://0", runner.calls[0])
	assert.Equal(t, []byte("%PDF"), runner.stdins["pdftoppm"])
}

func TestPoppler_RenderErrors(t *testing.T) {
	t.Run("tool failure", func(t *testing.T) {
		runner := &fakeRunner{errs: map[string]error{"pdftoppm": errors.New("exit status 1")}}
		_, err := Poppler{Runner: runner}.Render(context.Background(), nil, 1, 72)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rasterizing page 1")
	})

	t.Run("not a png", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string][]byte{"pdftoppm": []byte("garbage")}}
		_, err := Poppler{Runner: runner}.Render(context.Background(), nil, 1, 72)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding page 1 raster")
	})
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	got := Upscale(src)
	assert.Equal(t, 30, got.Bounds().Dx())
	assert.Equal(t, 12, got.Bounds().Dy())

	r, g, _, a := got.At(15, 6).RGBA()
	assert.InDelta(t, 0xffff, float64(r), 0x100)
	assert.InDelta(t, 0, float64(g), 0x100)
	assert.InDelta(t, 0xffff, float64(a), 0x100)
}

func TestUpscale_OffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 9, 7))
	assert.Equal(t, image.Rect(0, 0, 12, 6), Upscale(src).Bounds())
}

func TestTesseract_Recognize(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"tesseract": []byte("PRESENT IN THE CHAIR\n")}}

	text, err := Tesseract{Runner: runner, Language: "eng"}.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, "PRESENT IN THE CHAIR\n", text)
	assert.Equal(t, "tesseract stdin stdout -l eng", runner.calls[0])

	_, err = png.Decode(bytes.NewReader(runner.stdins["tesseract"]))
	assert.NoError(t, err, "tesseract receives a PNG on stdin")
}

// sizeRecorder captures the size of the image it is asked to recognize.
type sizeRecorder struct {
	bounds image.Rectangle
	text   string
	err    error
}

func (s *sizeRecorder) Recognize(_ context.Context, img image.Image) (string, error) {
	s.bounds = img.Bounds()
	return s.text, s.err
}

type fixedRaster struct {
	img      image.Image
	err      error
	gotPage  int
	gotDPI   int
	deadline bool
}

func (f *fixedRaster) Render(ctx context.Context, _ []byte, page, dpi int) (image.Image, error) {
	f.gotPage, f.gotDPI = page, dpi
	_, f.deadline = ctx.Deadline()
	return f.img, f.err
}

func TestEngine_PageText(t *testing.T) {
	raster := &fixedRaster{img: image.NewGray(image.Rect(0, 0, 100, 50))}
	rec := &sizeRecorder{text: "scanned words"}

	e := NewEngine(raster, rec, Options{PageTimeout: time.Minute})
	text, err := e.PageText(context.Background(), []byte("%PDF"), 2)
	require.NoError(t, err)

	assert.Equal(t, "scanned words", text)
	assert.Equal(t, 2, raster.gotPage)
	assert.Equal(t, DefaultDPI, raster.gotDPI)
	assert.True(t, raster.deadline, "page timeout applies a deadline")
	assert.Equal(t, image.Rect(0, 0, 300, 150), rec.bounds, "image is upscaled exactly 3x")
}

func TestEngine_PageTextErrors(t *testing.T) {
	t.Run("raster failure", func(t *testing.T) {
		e := NewEngine(&fixedRaster{err: errors.New("boom")}, &sizeRecorder{}, Options{})
		_, err := e.PageText(context.Background(), nil, 1)
		assert.Error(t, err)
	})

	t.Run("recognizer failure", func(t *testing.T) {
		e := NewEngine(&fixedRaster{img: image.NewGray(image.Rect(0, 0, 1, 1))}, &sizeRecorder{err: errors.New("engine crashed")}, Options{})
		_, err := e.PageText(context.Background(), nil, 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recognizing page 4")
	})

	t.Run("no deadline without timeout", func(t *testing.T) {
		raster := &fixedRaster{img: image.NewGray(image.Rect(0, 0, 1, 1))}
		e := NewEngine(raster, &sizeRecorder{}, Options{})
		_, err := e.PageText(context.Background(), nil, 1)
		require.NoError(t, err)
		assert.False(t, raster.deadline)
	})
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(types.OCRConfig{Backend: "cloud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown OCR backend")
}

func TestNew_LocalDefaults(t *testing.T) {
	e, err := New(types.OCRConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDPI, e.dpi)
	assert.Equal(t, DefaultLanguage, e.recognizer.(Tesseract).Language)
}
