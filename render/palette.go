package render

import "image/color"

var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorAsphalt   = color.RGBA{20, 20, 20, 255}
	colorGrass     = color.RGBA{34, 139, 34, 255}
	colorRed       = color.RGBA{255, 0, 0, 255}
	colorGreen     = color.RGBA{0, 255, 0, 255}
	colorYellow    = color.RGBA{255, 255, 0, 255}
	colorGray      = color.RGBA{100, 100, 100, 255}
	colorPanel     = color.RGBA{50, 50, 60, 255}
	colorButtonOn  = color.RGBA{0, 150, 0, 255}
	colorButtonOff = color.RGBA{150, 0, 0, 255}
	colorTaillight = color.RGBA{150, 0, 0, 255}
	colorBanner    = color.RGBA{20, 20, 20, 200}
)

// Sensor color bands by reading distance.
const (
	SensorDangerDistance  = 60
	SensorWarningDistance = 120
	// dashboardAlertDistance highlights a sensor value in the side panel.
	dashboardAlertDistance = 50
)

// SensorColor maps a sensor distance to red, yellow or green.
func SensorColor(distance int) color.RGBA {
	switch {
	case distance < SensorDangerDistance:
		return colorRed
	case distance < SensorWarningDistance:
		return colorYellow
	default:
		return colorGreen
	}
}

// ActorColor derives a stable bluish body color from an actor's color seed.
// Red and green land in [50, 255]; blue is always full.
func ActorColor(seed int64) color.RGBA {
	u := uint64(seed)
	return color.RGBA{
		R: uint8(50 + u%206),
		G: uint8(50 + (u>>16)%206),
		B: 255,
		A: 255,
	}
}
