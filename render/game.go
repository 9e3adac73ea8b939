// Package render is the interactive viewer: it feeds keyboard input to a
// sim.Environment each frame and draws the road, traffic, sensor rays and
// a dashboard. It only reads simulation state through the public accessors.
package render

import (
	"fmt"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/traffic-sim/sim"
)

// PanelWidth is the width of the dashboard to the right of the play area.
const PanelWidth = 200

// Options tunes the viewer window.
type Options struct {
	Scale float64 // window scale factor; 0 means 1
}

// Game adapts an Environment to ebiten.Game. One Update is one simulation tick.
type Game struct {
	env       *sim.Environment
	face      text.Face
	showRadar bool
	width     int
	height    int

	carImage *ebiten.Image // built on first draw
}

// NewGame builds the environment for cfg wired to the keyboard.
func NewGame(cfg sim.Config) (*Game, error) {
	env, err := sim.New(cfg, sim.WithInputProvider(NewKeyboard()))
	if err != nil {
		return nil, fmt.Errorf("creating environment: %w", err)
	}
	return &Game{
		env:       env,
		face:      text.NewGoXFace(bitmapfont.Face),
		showRadar: true,
		width:     int(cfg.GameWidth) + PanelWidth,
		height:    int(cfg.GameHeight),
	}, nil
}

// Run opens the window and blocks until it is closed.
func Run(cfg sim.Config, opts Options) error {
	g, err := NewGame(cfg)
	if err != nil {
		return err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	ebiten.SetWindowSize(int(float64(g.width)*scale), int(float64(g.height)*scale))
	ebiten.SetWindowTitle("traffic-sim")
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

// Update handles viewer keys and advances the simulation by one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) || g.radarButtonClicked() {
		g.showRadar = !g.showRadar
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		logrus.Infof("manual reset at tick %d", g.env.Tick())
		g.env.Reset()
		return nil
	}
	if _, err := g.env.Step(nil); err != nil {
		return fmt.Errorf("stepping environment: %w", err)
	}
	return nil
}

func (g *Game) radarButtonClicked() bool {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return false
	}
	x, y := ebiten.CursorPosition()
	b := radarButton(g.env.Config().GameWidth, g.env.Config().GameHeight)
	return float64(x) >= b.X && float64(x) < b.Right() && float64(y) >= b.Y && float64(y) < b.Bottom()
}

// Draw renders the current state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.drawRoad(screen)
	g.drawActors(screen)
	g.drawVehicle(screen)
	if g.showRadar {
		g.drawSensors(screen)
	}
	g.drawDashboard(screen)
	if !g.env.Vehicle().Alive {
		g.drawCrashBanner(screen)
	}
}

// Layout keeps the logical screen at the simulation's size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.width, g.height
}
