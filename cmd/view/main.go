// view displays an attack image written by `advlin attack` in a desktop
// window, scaled up so the 28x28 digits are legible.
//
// Usage:
//
//	view -image out/triptych.png -scale 8
package main

import (
	"flag"
	"image"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lmittmann/tint"
)

var (
	imagePath = flag.String("image", "out/triptych.png", "PNG to display")
	scale     = flag.Int("scale", 8, "integer upscale factor")
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func main() {
	flag.Parse()

	f, err := os.Open(*imagePath)
	if err != nil {
		slog.Error("opening image: " + err.Error())
		os.Exit(1)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		slog.Error("decoding image: " + err.Error())
		os.Exit(1)
	}

	bounds := img.Bounds()
	g := &game{img: ebiten.NewImageFromImage(img)}
	ebiten.SetWindowTitle("advlin: " + *imagePath)
	ebiten.SetWindowSize(bounds.Dx()*(*scale), bounds.Dy()*(*scale))
	if err := ebiten.RunGame(g); err != nil {
		slog.Error("running viewer: " + err.Error())
		os.Exit(1)
	}
}

type game struct {
	img *ebiten.Image
}

func (g *game) Update() error {
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.img.Bounds().Dx(), g.img.Bounds().Dy()
}
