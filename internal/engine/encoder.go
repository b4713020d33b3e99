// Package engine contiene la logica pura de BluPr: codificacion de respuestas en vectores
// y colores, la maquina de estados de la encuesta, la similitud y la clasificacion en clanes.
// Nada de este paquete hace I/O ni guarda estado entre llamadas.
package engine

import (
	"errors"
	"fmt"
	"math"

	"blupr/internal/catalog"
	"blupr/internal/domain"
)

// NeutralValue es el valor del vector para preguntas sin respuesta.
const NeutralValue = 0.5

var ErrInvalidFloors = errors.New("invalid intensity floors")

// IntensityFloors es la saturacion minima (respuesta neutral) por intensidad.
type IntensityFloors struct {
	High    float64
	Medium  float64
	Low     float64
	Default float64
}

func DefaultIntensityFloors() IntensityFloors {
	return IntensityFloors{High: 0.5, Medium: 0.6, Low: 0.7, Default: 0.6}
}

func (f IntensityFloors) Validate() error {
	floors := []struct {
		name  string
		value float64
	}{{"high", f.High}, {"medium", f.Medium}, {"low", f.Low}, {"default", f.Default}}
	for _, fl := range floors {
		if math.IsNaN(fl.value) || fl.value < 0 || fl.value > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidFloors, fl.name, fl.value)
		}
	}
	return nil
}

// Base devuelve el piso de la intensidad; etiquetas desconocidas usan Default.
func (f IntensityFloors) Base(intensity domain.Intensity) float64 {
	switch intensity {
	case domain.IntensityHigh:
		return f.High
	case domain.IntensityMedium:
		return f.Medium
	case domain.IntensityLow:
		return f.Low
	default:
		return f.Default
	}
}

// Encoder convierte un ResponseSet en vector y en colores, siempre en el orden del catalogo.
type Encoder struct {
	catalog *catalog.Catalog
	floors  IntensityFloors
}

func NewEncoder(c *catalog.Catalog, floors IntensityFloors) *Encoder {
	return &Encoder{catalog: c, floors: floors}
}

func (e *Encoder) Catalog() *catalog.Catalog { return e.catalog }

// Saturation combina extremidad de la respuesta y piso de intensidad.
// Puntaje 3 => piso; puntajes 1 o 5 => 1.
func (e *Encoder) Saturation(score int, intensity domain.Intensity) float64 {
	extremity := math.Abs(float64(score-domain.NeutralScore)) / 2
	base := e.floors.Base(intensity)
	return base + extremity*(1-base)
}

// VectorValue es la posicion normalizada de la respuesta ponderada por su saturacion.
func (e *Encoder) VectorValue(score int, intensity domain.Intensity) float64 {
	return (float64(score-domain.MinScore) / 4) * e.Saturation(score, intensity)
}

// Encode devuelve un vector de largo N. Preguntas sin respuesta (o con puntaje fuera de
// escala) valen NeutralValue.
func (e *Encoder) Encode(responses domain.ResponseSet) domain.BeliefVector {
	vector := make(domain.BeliefVector, e.catalog.Len())
	for i := range vector {
		q := e.catalog.At(i)
		score, ok := responses.Get(q.ID)
		if !ok || !domain.ValidScore(score) {
			vector[i] = NeutralValue
			continue
		}
		vector[i] = e.VectorValue(score, q.Intensity)
	}
	return vector
}

// Colorize devuelve un patch por pregunta. Las preguntas sin respuesta quedan con
// Present=false y sin color.
func (e *Encoder) Colorize(responses domain.ResponseSet) []domain.Patch {
	patches := make([]domain.Patch, e.catalog.Len())
	for i := range patches {
		q := e.catalog.At(i)
		patches[i] = domain.Patch{Index: i, QuestionID: q.ID}
		score, ok := responses.Get(q.ID)
		if !ok || !domain.ValidScore(score) {
			continue
		}
		sat := e.Saturation(score, q.Intensity)
		color := Desaturate(q.BaseColor, sat)
		patches[i].Color = color
		patches[i].Hex = color.Hex()
		patches[i].Saturation = sat
		patches[i].Present = true
	}
	return patches
}

// Desaturate interpola cada canal hacia el gris medio: 0 => gris, 1 => color original.
func Desaturate(rgb domain.RGB, saturation float64) domain.Color {
	c := rgb.Normalized()
	gray := (c.R + c.G + c.B) / 3
	return domain.Color{
		R: gray + saturation*(c.R-gray),
		G: gray + saturation*(c.G-gray),
		B: gray + saturation*(c.B-gray),
	}
}
