package domain

import "time"

// BeliefVector tiene un valor en [0,1] por pregunta del catalogo, en el orden del catalogo.
type BeliefVector []float64

// Float32 convierte el vector para columnas pgvector.
func (v BeliefVector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Patch es el color de una posicion del barcode. Present=false significa sin respuesta:
// el renderer deja el fondo.
type Patch struct {
	Index      int     `json:"index"`
	QuestionID int     `json:"question_id"`
	Color      Color   `json:"color"`
	Hex        string  `json:"hex,omitempty"`
	Saturation float64 `json:"saturation"`
	Present    bool    `json:"present"`
}

type MatchResult struct {
	Identity    string  `json:"identity"`
	DisplayName string  `json:"display_name,omitempty"`
	Similarity  float64 `json:"similarity"`
}

// Profile es el registro persistido de un blueprint completo, con su clan elegido.
type Profile struct {
	ID          string       `json:"id"`
	Identity    string       `json:"identity"`
	DisplayName string       `json:"display_name"`
	Responses   ResponseSet  `json:"responses"`
	Vector      BeliefVector `json:"vector"`
	Clan        string       `json:"clan"`
	CreatedAt   time.Time    `json:"created_at"`
}
