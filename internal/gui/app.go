// Package gui is the windowed frontend. It shows the renderer's frame as a
// texture and optionally evaluates on the GPU.
package gui

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/mandel/internal/app"
	"github.com/san-kum/mandel/internal/compute"
	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/control"
	"github.com/san-kum/mandel/internal/logx"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(200, 200, 200, 255)
	ColTextDim = rl.NewColor(120, 120, 120, 255)
	ColPanel   = rl.NewColor(0, 0, 0, 160)
	ColWarn    = rl.NewColor(255, 170, 0, 255)
)

type App struct {
	Ctx     *app.Context
	Backend compute.Backend

	Texture rl.Texture2D
	texW    int
	texH    int
	pixels  []color.RGBA

	ShowHUD bool
	quit    bool
}

func initWindow(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed or Esc is pressed.
func Run(cfg *config.Config) error {
	initWindow(cfg)
	defer rl.CloseWindow()

	a, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer a.Cleanup()
	a.RunLoop()
	return nil
}

// NewApp builds the session on the configured backend. The GL context
// belongs to the window, so this must run after InitWindow. A GPU backend
// that fails to initialize is replaced by the CPU one.
func NewApp(cfg *config.Config) (*App, error) {
	backend, err := compute.New(cfg.Render.Backend)
	if err != nil {
		return nil, err
	}
	ctx, err := app.New(cfg, backend)
	fallback := ""
	if err != nil && backend.Name() != "cpu" {
		logx.Logger().Warn("gpu backend unavailable, using cpu", "backend", backend.Name(), "err", err)
		fallback = fmt.Sprintf("%s backend unavailable, using cpu", backend.Name())
		backend.Cleanup()
		backend = compute.NewCPUBackend()
		ctx, err = app.New(cfg, backend)
	}
	if err != nil {
		return nil, err
	}
	if fallback != "" {
		ctx.SetStatus(fallback)
	}

	a := &App{Ctx: ctx, Backend: backend, ShowHUD: true}
	a.resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	return a, nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) Cleanup() {
	if a.Texture.ID != 0 {
		rl.UnloadTexture(a.Texture)
	}
	a.Backend.Cleanup()
}

// resize sets the display size and recreates the texture to match.
func (a *App) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Ctx.Resize(w, h)
	if a.Texture.ID != 0 && a.texW == w && a.texH == h {
		return
	}
	if a.Texture.ID != 0 {
		rl.UnloadTexture(a.Texture)
	}
	img := rl.GenImageColor(w, h, ColBg)
	a.Texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	a.texW, a.texH = w, h
	a.pixels = make([]color.RGBA, w*h)
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		a.resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	for _, key := range pressedKeys() {
		if key == "ctrl+h" {
			a.ShowHUD = !a.ShowHUD
			continue
		}
		action := a.Ctx.Keys.KeyDown(key)
		if action == control.ActionNone {
			continue
		}
		if err := a.Ctx.Handle(action); err != nil {
			if errors.Is(err, app.ErrQuit) {
				a.quit = true
				return
			}
			a.Ctx.SetStatus(err.Error())
		}
	}
	a.Ctx.Keys.Poll(held)

	frame := a.Ctx.Frame(float64(rl.GetFrameTime()))
	a.upload(frame)
}

// upload copies the frame into the texture.
func (a *App) upload(frame *image.RGBA) {
	b := frame.Bounds()
	if b.Dx() != a.texW || b.Dy() != a.texH {
		return
	}
	for y := 0; y < a.texH; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+4*a.texW]
		for x := 0; x < a.texW; x++ {
			p := row[4*x : 4*x+4 : 4*x+4]
			a.pixels[y*a.texW+x] = color.RGBA{p[0], p[1], p[2], 0xff}
		}
	}
	rl.UpdateTexture(a.Texture, a.pixels)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	rl.DrawTexture(a.Texture, 0, 0, rl.White)
	if a.ShowHUD {
		a.DrawHUD()
	}
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w := int32(a.texW)
	rl.DrawRectangle(0, 0, w, 48, ColPanel)
	rl.DrawText(a.Ctx.Summary()+" | "+a.Backend.Name(), 10, 6, 16, ColText)

	status := a.Ctx.Status()
	col := ColTextDim
	if a.Ctx.Paused() {
		col = ColWarn
	}
	if status == "" {
		status = "WASD move  R/F zoom  T/G precision  TAB pause  SPACE step  CTRL+S snapshot  ESC quit"
	}
	rl.DrawText(status, 10, 26, 14, col)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), w-70, int32(a.texH)-22, 14, ColTextDim)
}
