package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/inference-sim/traffic-sim/sim"
)

// Lane dash geometry.
const (
	dashLength = 20.0
	dashStart  = -50.0 // first dash before scrolling, above the top edge
)

// laneDashes returns the top y of every dash on one lane divider for the
// given scroll offset. Dashes pushed past the bottom wrap back above the top.
func laneDashes(offset, height float64) []float64 {
	var ys []float64
	for y := dashStart; y < height; y += sim.LaneMarkPeriod {
		d := y + offset
		if d > height {
			d -= height - dashStart
		}
		ys = append(ys, d)
	}
	return ys
}

func fillRect(dst *ebiten.Image, r sim.Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, false)
}

func (g *Game) drawRoad(screen *ebiten.Image) {
	screen.Fill(colorAsphalt)
	road := g.env.Road()
	for _, w := range road.Walls {
		fillRect(screen, w, colorGrass)
	}
	for _, o := range g.env.Obstacles() {
		fillRect(screen, o, colorGray)
	}

	h := float32(road.Height)
	left, right := float32(road.X), float32(road.X+road.Width)
	vector.StrokeLine(screen, left, 0, left, h, 5, colorWhite, false)
	vector.StrokeLine(screen, right, 0, right, h, 5, colorWhite, false)

	dashes := laneDashes(g.env.LaneOffset(), road.Height)
	for _, x := range road.LaneBoundaries() {
		for _, y := range dashes {
			vector.StrokeLine(screen, float32(x), float32(y), float32(x), float32(y+dashLength), 2, colorWhite, false)
		}
	}
}

func (g *Game) drawActors(screen *ebiten.Image) {
	for _, a := range g.env.Actors() {
		fillRect(screen, a.Rect, ActorColor(a.ColorSeed))
	}
}

// carSprite draws the controlled vehicle body: green with headlights and taillights.
func carSprite(w, h int) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(colorGreen)
	fw, fh := float64(w), float64(h)
	fillRect(img, sim.Rect{X: 5, Y: 0, W: 10, H: 5}, colorYellow)
	fillRect(img, sim.Rect{X: fw - 15, Y: 0, W: 10, H: 5}, colorYellow)
	fillRect(img, sim.Rect{X: 5, Y: fh - 5, W: 10, H: 5}, colorTaillight)
	fillRect(img, sim.Rect{X: fw - 15, Y: fh - 5, W: 10, H: 5}, colorTaillight)
	return img
}

func (g *Game) drawVehicle(screen *ebiten.Image) {
	v := g.env.Vehicle()
	if g.carImage == nil {
		g.carImage = carSprite(int(v.Width), int(v.Height))
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-v.Width/2, -v.Height/2)
	// Heading degrees are counter-clockwise; GeoM rotates clockwise on screen.
	op.GeoM.Rotate(-v.Heading.Degrees() * math.Pi / 180)
	op.GeoM.Translate(v.Position.X, v.Position.Y)
	if !v.Alive {
		op.ColorScale.Scale(1, 0.4, 0.4, 1)
	}
	screen.DrawImage(g.carImage, op)
}

func (g *Game) drawSensors(screen *ebiten.Image) {
	v := g.env.Vehicle()
	x0, y0 := float32(v.Position.X), float32(v.Position.Y)
	for _, s := range g.env.Sensors() {
		clr := SensorColor(s.Distance)
		vector.StrokeLine(screen, x0, y0, float32(s.End.X), float32(s.End.Y), 1, clr, false)
		vector.DrawFilledCircle(screen, float32(s.End.X), float32(s.End.Y), 3, clr, false)
	}
}

// label is one piece of dashboard text.
type label struct {
	text  string
	x, y  float64
	scale float64
	clr   color.Color
}

// radarButton is the clickable radar toggle at the bottom of the panel.
func radarButton(gameWidth, gameHeight float64) sim.Rect {
	return sim.Rect{X: gameWidth + 20, Y: gameHeight - 60, W: 160, H: 40}
}

// dashboardLabels lays out the side panel for a vehicle snapshot.
func dashboardLabels(v sim.ControlledVehicle, showRadar bool, gameWidth float64) []label {
	x := gameWidth + 20
	labels := []label{
		{text: "Dashboard", x: x, y: 30, scale: 1.5, clr: colorYellow},
		{text: fmt.Sprintf("Speed: %.1f km/h", v.Speed), x: x, y: 70, scale: 1, clr: colorWhite},
		{text: fmt.Sprintf("Dist: %d m", int(v.DistanceTraveled)), x: x, y: 105, scale: 1, clr: colorWhite},
	}
	if v.Alive {
		labels = append(labels, label{text: "ALIVE", x: x, y: 140, scale: 1.5, clr: colorGreen})
	} else {
		labels = append(labels, label{text: "CRASHED", x: x, y: 140, scale: 1.5, clr: colorRed})
	}
	labels = append(labels, label{text: "360 Sensors:", x: x, y: 185, scale: 1, clr: colorGray})

	textColor := color.Color(colorWhite)
	if !showRadar {
		textColor = colorGray
	}
	for i, s := range v.Sensors {
		clr := textColor
		if showRadar && s.Distance < dashboardAlertDistance {
			clr = colorRed
		}
		labels = append(labels, label{
			text:  fmt.Sprintf("%s: %d", sim.SensorLabels[i], s.Distance),
			x:     gameWidth + 10 + float64(i%2)*90,
			y:     210 + float64(i/2)*20,
			scale: 1,
			clr:   clr,
		})
	}
	return labels
}

func (g *Game) drawText(screen *ebiten.Image, l label) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(l.scale, l.scale)
	op.GeoM.Translate(l.x, l.y)
	op.ColorScale.ScaleWithColor(l.clr)
	text.Draw(screen, l.text, g.face, op)
}

func (g *Game) drawDashboard(screen *ebiten.Image) {
	cfg := g.env.Config()
	panel := sim.Rect{X: cfg.GameWidth, Y: 0, W: PanelWidth, H: cfg.GameHeight}
	fillRect(screen, panel, colorPanel)
	vector.StrokeLine(screen, float32(panel.X), 0, float32(panel.X), float32(panel.H), 2, colorWhite, false)

	for _, l := range dashboardLabels(g.env.Vehicle(), g.showRadar, cfg.GameWidth) {
		g.drawText(screen, l)
	}

	btn := radarButton(cfg.GameWidth, cfg.GameHeight)
	btnColor, state := colorButtonOff, "OFF"
	if g.showRadar {
		btnColor, state = colorButtonOn, "ON"
	}
	fillRect(screen, btn, btnColor)
	g.drawText(screen, label{text: fmt.Sprintf("Lidar: %s (L)", state), x: btn.X + 20, y: btn.Y + 12, scale: 1, clr: colorWhite})
}

func (g *Game) drawCrashBanner(screen *ebiten.Image) {
	cfg := g.env.Config()
	const scale = 3.0
	msg := "CRASHED!"
	w, h := text.Measure(msg, g.face, 0)
	w, h = w*scale, h*scale
	cx, cy := cfg.GameWidth/2, cfg.GameHeight/2
	fillRect(screen, sim.Rect{X: cx - w/2 - 10, Y: cy - h/2 - 10, W: w + 20, H: h + 20}, colorBanner)
	g.drawText(screen, label{text: msg, x: cx - w/2, y: cy - h/2, scale: scale, clr: colorRed})
}
