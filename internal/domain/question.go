package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Intensity clasifica cuanto "pesa" visualmente un rasgo cuando la respuesta es neutral.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ParseIntensity normaliza la etiqueta. Etiquetas desconocidas se conservan tal cual;
// el encoder les aplica el piso por defecto.
func ParseIntensity(label string) Intensity {
	return Intensity(strings.ToLower(strings.TrimSpace(label)))
}

// Known indica si la etiqueta es una de las tres intensidades reconocidas.
func (i Intensity) Known() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	}
	return false
}

// RGB es un color base de 24 bits.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ParseHex convierte "#RRGGBB" (con o sin '#') en RGB.
func ParseHex(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Normalized devuelve el color con canales en [0,1].
func (c RGB) Normalized() Color {
	return Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Color es un color con canales normalizados en [0,1], resultado de desaturar un RGB.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex redondea cada canal a 8 bits.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", toByte(c.R), toByte(c.G), toByte(c.B))
}

func toByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Question es una afirmacion del cuestionario. Inmutable una vez cargado el catalogo.
type Question struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Trait     string    `json:"trait"`
	ColorName string    `json:"color_name,omitempty"`
	BaseColor RGB       `json:"base_color"`
	Intensity Intensity `json:"intensity"`
}

// AnswerOptions son las etiquetas de la escala ordinal 1..5.
var AnswerOptions = map[int]string{
	1: "Strongly Disagree",
	2: "Disagree",
	3: "Neutral",
	4: "Agree",
	5: "Strongly Agree",
}

const (
	MinScore     = 1
	MaxScore     = 5
	NeutralScore = 3
)

// ValidScore indica si el puntaje pertenece a la escala [1,5].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
