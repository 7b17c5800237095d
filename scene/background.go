package scene

import "fmt"

// Background selects how the viewer background is drawn, and with it the
// clear color of every render target.
type Background int

const (
	BackgroundSkybox Background = iota
	BackgroundGradient
	BackgroundBlack
	BackgroundWhite
	BackgroundNone
)

var backgroundNames = map[Background]string{
	BackgroundSkybox:   "skybox",
	BackgroundGradient: "gradient",
	BackgroundBlack:    "black",
	BackgroundWhite:    "white",
	BackgroundNone:     "none",
}

func (b Background) String() string {
	if name, ok := backgroundNames[b]; ok {
		return name
	}

	return fmt.Sprintf("Background(%d)", int(b))
}

// ClearColor returns the color targets are cleared with. Only black and white
// clear to an opaque color, every other mode clears to transparent black so
// the background can be drawn behind the scene.
func (b Background) ClearColor() Color {
	switch b {
	case BackgroundBlack:
		return ColorHex(0x000000, 1)
	case BackgroundWhite:
		return ColorHex(0xffffff, 1)
	default:
		return ColorHex(0x000000, 0)
	}
}

func (b Background) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Background) UnmarshalText(text []byte) error {
	for value, name := range backgroundNames {
		if name == string(text) {
			*b = value
			return nil
		}
	}

	return fmt.Errorf("unknown background %q", string(text))
}
