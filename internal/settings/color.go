package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ColorKind discriminates the forms a Color can take.
type ColorKind uint8

const (
	// ColorUnset is the zero Color; the terminal default is used.
	ColorUnset ColorKind = iota
	// ColorRGB is a 24-bit literal.
	ColorRGB
	// ColorNamed is one of the named palette colors.
	ColorNamed
	// ColorIndexed is a 256-color palette index.
	ColorIndexed
)

// NamedColor is a palette color addressed by name.
type NamedColor uint8

// Named palette colors.
const (
	Reset NamedColor = iota
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	Gray
	DarkGray
	LightRed
	LightGreen
	LightYellow
	LightBlue
	LightMagenta
	LightCyan
	White
)

var namedColors = [...]struct {
	name  string
	tcell tcell.Color
}{
	Reset:        {"Reset", tcell.ColorReset},
	Black:        {"Black", tcell.ColorBlack},
	Red:          {"Red", tcell.ColorMaroon},
	Green:        {"Green", tcell.ColorGreen},
	Yellow:       {"Yellow", tcell.ColorOlive},
	Blue:         {"Blue", tcell.ColorNavy},
	Magenta:      {"Magenta", tcell.ColorPurple},
	Cyan:         {"Cyan", tcell.ColorTeal},
	Gray:         {"Gray", tcell.ColorSilver},
	DarkGray:     {"DarkGray", tcell.ColorGray},
	LightRed:     {"LightRed", tcell.ColorRed},
	LightGreen:   {"LightGreen", tcell.ColorLime},
	LightYellow:  {"LightYellow", tcell.ColorYellow},
	LightBlue:    {"LightBlue", tcell.ColorBlue},
	LightMagenta: {"LightMagenta", tcell.ColorFuchsia},
	LightCyan:    {"LightCyan", tcell.ColorAqua},
	White:        {"White", tcell.ColorWhite},
}

// String returns the color name.
func (n NamedColor) String() string {
	if int(n) < len(namedColors) {
		return namedColors[n].name
	}
	return fmt.Sprintf("NamedColor(%d)", n)
}

// Color is one side of a Style. The zero value is unset.
type Color struct {
	Kind    ColorKind
	R, G, B uint8
	Name    NamedColor
	Index   uint8
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Named returns a named palette color.
func Named(n NamedColor) Color {
	return Color{Kind: ColorNamed, Name: n}
}

// Indexed returns a palette index color.
func Indexed(i uint8) Color {
	return Color{Kind: ColorIndexed, Index: i}
}

// IsSet returns false for the zero Color.
func (c Color) IsSet() bool {
	return c.Kind != ColorUnset
}

// ParseColor accepts nil (unset), "#rrggbb", a color name, or a palette
// index number.
func ParseColor(v any) (Color, error) {
	switch x := v.(type) {
	case nil:
		return Color{}, nil
	case Color:
		return x, nil
	case string:
		return parseColorString(x)
	case int:
		return indexedColor(int64(x))
	case int64:
		return indexedColor(x)
	case uint64:
		if x > math.MaxUint8 {
			return Color{}, fmt.Errorf("%w: palette index %d out of range", ErrInvalidColor, x)
		}
		return Indexed(uint8(x)), nil
	case float64:
		if x != math.Trunc(x) {
			return Color{}, fmt.Errorf("%w: palette index %v is not an integer", ErrInvalidColor, x)
		}
		return indexedColor(int64(x))
	default:
		return Color{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidColor, v)
	}
}

func indexedColor(i int64) (Color, error) {
	if i < 0 || i > math.MaxUint8 {
		return Color{}, fmt.Errorf("%w: palette index %d out of range", ErrInvalidColor, i)
	}
	return Indexed(uint8(i)), nil
}

func parseColorString(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		n, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return RGB(uint8(n>>16), uint8(n>>8), uint8(n)), nil
	}
	name := strings.ReplaceAll(strings.ToLower(s), "grey", "gray")
	for i, nc := range namedColors {
		if strings.ToLower(nc.name) == name {
			return Named(NamedColor(i)), nil
		}
	}
	return Color{}, fmt.Errorf("%w: unknown color %q", ErrInvalidColor, s)
}

// Value returns the plain form of c: nil, "#rrggbb", a color name, or an
// int64 palette index. ParseColor(c.Value()) == c.
func (c Color) Value() any {
	switch c.Kind {
	case ColorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	case ColorNamed:
		return c.Name.String()
	case ColorIndexed:
		return int64(c.Index)
	default:
		return nil
	}
}

// String returns a readable form of c.
func (c Color) String() string {
	if v := c.Value(); v != nil {
		return fmt.Sprint(v)
	}
	return "unset"
}

// Tcell converts c for drawing.
func (c Color) Tcell() tcell.Color {
	switch c.Kind {
	case ColorRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	case ColorNamed:
		if int(c.Name) < len(namedColors) {
			return namedColors[c.Name].tcell
		}
		return tcell.ColorDefault
	case ColorIndexed:
		return tcell.PaletteColor(int(c.Index))
	default:
		return tcell.ColorDefault
	}
}

// Style is a foreground/background pair.
type Style struct {
	Fg Color
	Bg Color
}

// Style field names in tables.
const (
	FieldFg = "fg"
	FieldBg = "bg"
)

// ParseStyle accepts a table {fg, bg}; missing sides are unset.
func ParseStyle(v any) (Style, error) {
	switch x := v.(type) {
	case Style:
		return x, nil
	case map[string]any:
		var st Style
		for k, side := range x {
			c, err := ParseColor(side)
			if err != nil {
				return Style{}, fmt.Errorf("%s: %w", k, err)
			}
			switch k {
			case FieldFg:
				st.Fg = c
			case FieldBg:
				st.Bg = c
			default:
				return Style{}, fmt.Errorf("%w: unknown style field %q", ErrInvalidColor, k)
			}
		}
		return st, nil
	default:
		return Style{}, fmt.Errorf("%w: style must be a table, got %T", ErrInvalidColor, v)
	}
}

// Fields returns the table form of s. Unset sides are omitted.
func (s Style) Fields() map[string]any {
	m := make(map[string]any, 2)
	if s.Fg.IsSet() {
		m[FieldFg] = s.Fg.Value()
	}
	if s.Bg.IsSet() {
		m[FieldBg] = s.Bg.Value()
	}
	return m
}

// Tcell converts s for drawing.
func (s Style) Tcell() tcell.Style {
	return tcell.StyleDefault.Foreground(s.Fg.Tcell()).Background(s.Bg.Tcell())
}
