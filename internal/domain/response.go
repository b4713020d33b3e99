package domain

import (
	"sort"
	"time"
)

type Answer struct {
	QuestionID int `json:"question_id"`
	Score      int `json:"score"`
}

// ResponseSet mapea question_id -> puntaje. Re-responder sobrescribe.
type ResponseSet map[int]int

func NewResponseSet() ResponseSet {
	return make(ResponseSet)
}

func (r ResponseSet) Len() int { return len(r) }

func (r ResponseSet) Get(questionID int) (int, bool) {
	score, ok := r[questionID]
	return score, ok
}

// With devuelve una copia con la respuesta aplicada; el receptor no se modifica.
func (r ResponseSet) With(questionID, score int) ResponseSet {
	next := r.Clone()
	next[questionID] = score
	return next
}

func (r ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Answers devuelve las respuestas ordenadas por question_id.
func (r ResponseSet) Answers() []Answer {
	out := make([]Answer, 0, len(r))
	for id, score := range r {
		out = append(out, Answer{QuestionID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// ResponseRecord es el registro append-only que guarda el store por cada respuesta.
type ResponseRecord struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	QuestionID int       `json:"question_id"`
	Score      int       `json:"score"`
	AnsweredAt time.Time `json:"answered_at"`
}

// SortRecords ordena por answered_at conservando el orden de llegada en empates.
func SortRecords(records []ResponseRecord) []ResponseRecord {
	out := make([]ResponseRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AnsweredAt.Before(out[j].AnsweredAt) })
	return out
}

// ResponseSetFromRecords reconstruye el ResponseSet: gana la respuesta mas reciente.
func ResponseSetFromRecords(records []ResponseRecord) ResponseSet {
	set := NewResponseSet()
	for _, rec := range SortRecords(records) {
		set[rec.QuestionID] = rec.Score
	}
	return set
}
