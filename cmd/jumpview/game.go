package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/config"
	"github.com/milk9111/jump/scene"
	"github.com/sirupsen/logrus"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	cameraFollow = 0.15
)

type Options struct {
	ConfigPath string
	Level      string
	Debug      bool
	Watch      bool
	Zoom       float64
	Log        *logrus.Logger
}

type Game struct {
	frames int

	opts    Options
	scene   *scene.Scene
	watcher *config.Watcher
	camera  cp.Vector
	debug   bool
}

func NewGame(opts Options) (*Game, error) {
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	s, err := scene.Load(opts.ConfigPath, opts.Level, opts.Log)
	if err != nil {
		return nil, err
	}
	g := &Game{
		opts:   opts,
		scene:  s,
		camera: s.Player.AABB.Center(),
		debug:  opts.Debug,
	}

	if opts.Watch && opts.ConfigPath != "" {
		dirs := []string{filepath.Dir(opts.ConfigPath)}
		if scripts := filepath.Join(filepath.Dir(opts.ConfigPath), "scripts"); isDir(scripts) {
			dirs = append(dirs, scripts)
		}
		w, err := config.NewWatcher(dirs...)
		if err != nil {
			opts.Log.WithError(err).Warn("jumpview: watch disabled")
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.scene.Respawn()
	}
	g.pollWatcher()

	g.scene.Frame(1/float64(ebiten.TPS()), pressed)

	target := g.scene.Player.AABB.Center()
	g.camera.X = common.Lerp(g.camera.X, target.X, cameraFollow)
	g.camera.Y = common.Lerp(g.camera.Y, target.Y, cameraFollow)
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.opts.Log.WithError(err).Warn("jumpview: watch error")
		default:
			return
		}
	}
}

func (g *Game) reload(changed string) {
	s, err := scene.Load(g.opts.ConfigPath, g.opts.Level, g.opts.Log)
	if err != nil {
		g.opts.Log.WithError(err).WithField("file", changed).Warn("jumpview: keeping current scene")
		return
	}
	g.scene = s
	g.opts.Log.WithField("file", changed).Info("jumpview: reloaded")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	d := newDrawer(screen, g.camera, g.opts.Zoom)
	d.drawGrid(g.scene.World.Grid(), g.scene.World.GridOffset())
	d.drawScene(g.scene)
	if g.debug {
		d.drawCollisions(g.scene.World)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f\n%s", g.frames, ebiten.ActualFPS(), g.scene.Status()))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
