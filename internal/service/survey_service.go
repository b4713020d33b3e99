package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blupr/internal/domain"
	"blupr/internal/engine"
	"blupr/internal/repository"
)

// SurveyService conecta la máquina de estados con los stores: las respuestas persistidas
// son la fuente de verdad; la sesión sólo aporta cursor y flag de guardado.
type SurveyService struct {
	logger    *zap.Logger
	survey    *engine.Survey
	encoder   *engine.Encoder
	responses repository.ResponseRepository
	profiles  repository.ProfileRepository
	sessions  SessionStore
	matcher   *MatchService
	locks     *identityLocks
	now       func() time.Time
	newID     func() string
}

func NewSurveyService(
	logger *zap.Logger,
	survey *engine.Survey,
	encoder *engine.Encoder,
	responses repository.ResponseRepository,
	profiles repository.ProfileRepository,
	sessions SessionStore,
	matcher *MatchService,
) *SurveyService {
	if sessions == nil {
		sessions = NewMemorySessionStore(0)
	}
	return &SurveyService{
		logger:    logger,
		survey:    survey,
		encoder:   encoder,
		responses: responses,
		profiles:  profiles,
		sessions:  sessions,
		matcher:   matcher,
		locks:     newIdentityLocks(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// SurveyView es lo que ve la capa de presentación.
type SurveyView struct {
	Phase          engine.Phase     `json:"phase"`
	Cursor         int              `json:"cursor"`
	Current        domain.Question  `json:"current"`
	CurrentScore   *int             `json:"current_score,omitempty"`
	NextUnanswered *domain.Question `json:"next_unanswered,omitempty"`
	Answered       int              `json:"answered"`
	Target         int              `json:"target"`
	CatalogSize    int              `json:"catalog_size"`
	Progress       float64          `json:"progress"`
	PulseRemaining int              `json:"pulse_remaining"`
	Saved          bool             `json:"saved"`
}

// Blueprint es el vector y la tira de colores derivados de las respuestas actuales.
type Blueprint struct {
	Vector   domain.BeliefVector `json:"vector"`
	Patches  []domain.Patch      `json:"patches"`
	Answered int                 `json:"answered"`
}

type Completion struct {
	Profile  domain.Profile `json:"profile"`
	Report   MatchReport    `json:"report"`
	Inserted bool           `json:"inserted"`
}

func (s *SurveyService) State(ctx context.Context, identity string) (SurveyView, error) {
	st, records, err := s.load(ctx, identity)
	if err != nil {
		return SurveyView{}, err
	}
	return s.view(st, records), nil
}

// Answer registra una respuesta (onboarding o pulso) y la agrega al store.
// Una respuesta de pulso sobre un perfil ya guardado actualiza ese perfil.
func (s *SurveyService) Answer(ctx context.Context, identity string, questionID, score int) (SurveyView, error) {
	if s != nil && s.locks != nil {
		defer s.locks.lock(identity)()
	}
	st, records, err := s.load(ctx, identity)
	if err != nil {
		return SurveyView{}, err
	}
	pulse := s.survey.IsComplete(st)
	now := s.now()
	next, err := s.survey.Submit(st, records, questionID, score, now)
	if err != nil {
		return s.view(st, records), err
	}

	record := domain.ResponseRecord{
		ID:         s.newID(),
		Identity:   identity,
		QuestionID: questionID,
		Score:      score,
		AnsweredAt: now,
	}
	if err := s.responses.Append(ctx, record); err != nil {
		if s.logger != nil {
			s.logger.Error("append response failed", zap.String("identity", identity), zap.Error(err))
		}
		return s.view(st, records), fmt.Errorf("%w: append response: %v", ErrPersistence, err)
	}
	records = append(records, record)
	s.saveSession(ctx, identity, next)
	if pulse {
		s.refreshProfile(ctx, identity, next.Responses)
	}
	return s.view(next, records), nil
}

// refreshProfile reescribe respuestas, vector y clan del perfil guardado. Sin perfil no hace nada.
// La respuesta ya quedo persistida, asi que una falla aca sólo se loguea.
func (s *SurveyService) refreshProfile(ctx context.Context, identity string, responses domain.ResponseSet) {
	if s.profiles == nil {
		return
	}
	stored, found, err := s.storedProfile(ctx, identity)
	if err != nil || !found {
		if err != nil && s.logger != nil {
			s.logger.Warn("load profile for refresh failed", zap.String("identity", identity), zap.Error(err))
		}
		return
	}

	updated := stored
	updated.Responses = responses.Clone()
	updated.Vector = s.encoder.Encode(responses)
	if report, err := s.matcher.Match(ctx, identity, responses, 0); err == nil {
		updated.Clan = report.Classification.Cohort
	} else if s.logger != nil {
		s.logger.Warn("reclassify profile failed", zap.String("identity", identity), zap.Error(err))
	}
	if err := s.profiles.Upsert(ctx, updated); err != nil {
		if s.logger != nil {
			s.logger.Warn("refresh profile failed", zap.String("identity", identity), zap.Error(err))
		}
		return
	}
	if s.logger != nil {
		s.logger.Info("profile refreshed", zap.String("identity", identity), zap.String("clan", updated.Clan))
	}
}

// storedProfile distingue "no existe" de una falla del store.
func (s *SurveyService) storedProfile(ctx context.Context, identity string) (domain.Profile, bool, error) {
	p, err := s.profiles.GetByIdentity(ctx, identity)
	switch {
	case err == nil:
		return p, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Profile{}, false, nil
	default:
		return domain.Profile{}, false, err
	}
}

// Profile devuelve el perfil guardado con el clan asignado.
func (s *SurveyService) Profile(ctx context.Context, identity string) (domain.Profile, error) {
	if s == nil || s.profiles == nil {
		return domain.Profile{}, ErrServiceNotConfigured
	}
	if strings.TrimSpace(identity) == "" {
		return domain.Profile{}, ErrInvalidIdentity
	}
	p, found, err := s.storedProfile(ctx, identity)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: load profile: %v", ErrPersistence, err)
	}
	if !found {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

// Move mueve el cursor de presentación; fuera de rango no hace nada.
func (s *SurveyService) Move(ctx context.Context, identity string, dir engine.Direction) (SurveyView, error) {
	st, records, err := s.load(ctx, identity)
	if err != nil {
		return SurveyView{}, err
	}
	next := s.survey.Move(st, dir)
	s.saveSession(ctx, identity, next)
	return s.view(next, records), nil
}

// Reset descarta la sesion cacheada; el cursor vuelve a la primera pregunta sin responder.
// Las respuestas no se tocan.
func (s *SurveyService) Reset(ctx context.Context, identity string) (SurveyView, error) {
	if s == nil || s.sessions == nil {
		return SurveyView{}, ErrServiceNotConfigured
	}
	if strings.TrimSpace(identity) == "" {
		return SurveyView{}, ErrInvalidIdentity
	}
	if err := s.sessions.Delete(ctx, identity); err != nil {
		return SurveyView{}, fmt.Errorf("%w: delete session: %v", ErrPersistence, err)
	}
	return s.State(ctx, identity)
}

func (s *SurveyService) Blueprint(ctx context.Context, identity string) (Blueprint, error) {
	st, _, err := s.load(ctx, identity)
	if err != nil {
		return Blueprint{}, err
	}
	return Blueprint{
		Vector:   s.encoder.Encode(st.Responses),
		Patches:  s.encoder.Colorize(st.Responses),
		Answered: st.Responses.Len(),
	}, nil
}

func (s *SurveyService) Matches(ctx context.Context, identity string, limit int) (MatchReport, error) {
	st, _, err := s.load(ctx, identity)
	if err != nil {
		return MatchReport{}, err
	}
	return s.matcher.Match(ctx, identity, st.Responses, limit)
}

// Complete clasifica el blueprint y guarda el perfil como mucho una vez por identidad.
// Si el matching o el guardado fallan, Completion igual trae el vector calculado.
func (s *SurveyService) Complete(ctx context.Context, identity, displayName string) (Completion, error) {
	if s != nil && s.locks != nil {
		defer s.locks.lock(identity)()
	}
	st, _, err := s.load(ctx, identity)
	if err != nil {
		return Completion{}, err
	}
	if !s.survey.IsComplete(st) {
		return Completion{}, ErrNotComplete
	}

	profile := domain.Profile{
		ID:          s.newID(),
		Identity:    identity,
		DisplayName: strings.TrimSpace(displayName),
		Responses:   st.Responses.Clone(),
		Vector:      s.encoder.Encode(st.Responses),
		CreatedAt:   s.now(),
	}
	result := Completion{Profile: profile}

	report, err := s.matcher.Match(ctx, identity, st.Responses, 0)
	if err != nil {
		return result, err
	}
	result.Report = report
	result.Profile.Clan = report.Classification.Cohort
	if st.Saved {
		return result, nil
	}

	// sesion expirada o nueva: el store dice si ya hay perfil
	stored, found, err := s.storedProfile(ctx, identity)
	if err != nil && s.logger != nil {
		s.logger.Warn("load existing profile failed", zap.String("identity", identity), zap.Error(err))
	}
	if found {
		result.Profile.ID = stored.ID
		result.Profile.CreatedAt = stored.CreatedAt
		if result.Profile.DisplayName == "" {
			result.Profile.DisplayName = stored.DisplayName
		}
	} else {
		err = s.profiles.Create(ctx, result.Profile)
		switch {
		case err == nil:
			result.Inserted = true
		case errors.Is(err, repository.ErrProfileExists):
			// otra request lo inserto entre el chequeo y el insert
		default:
			if s.logger != nil {
				s.logger.Error("save profile failed", zap.String("identity", identity), zap.Error(err))
			}
			return result, fmt.Errorf("%w: save profile: %v", ErrPersistence, err)
		}
	}

	st.Saved = true
	s.saveSession(ctx, identity, st)
	if s.logger != nil {
		s.logger.Info("blueprint completed",
			zap.String("identity", identity),
			zap.String("clan", result.Profile.Clan),
			zap.Bool("inserted", result.Inserted),
		)
	}
	return result, nil
}

func (s *SurveyService) load(ctx context.Context, identity string) (engine.State, []domain.ResponseRecord, error) {
	if s == nil || s.survey == nil || s.responses == nil {
		return engine.State{}, nil, ErrServiceNotConfigured
	}
	if strings.TrimSpace(identity) == "" {
		return engine.State{}, nil, ErrInvalidIdentity
	}
	records, err := s.responses.ListByIdentity(ctx, identity)
	if err != nil {
		return engine.State{}, nil, fmt.Errorf("%w: list responses: %v", ErrPersistence, err)
	}

	st, ok, err := s.sessions.Load(ctx, identity)
	if err != nil && s.logger != nil {
		s.logger.Warn("load session failed", zap.String("identity", identity), zap.Error(err))
	}
	if err != nil || !ok {
		st = engine.NewState()
		if q, found := s.survey.NextUnanswered(engine.State{Responses: domain.ResponseSetFromRecords(records)}); found {
			st.Cursor, _ = s.survey.Catalog().IndexOf(q.ID)
		}
	}
	st.Responses = domain.ResponseSetFromRecords(records)
	return st, records, nil
}

func (s *SurveyService) saveSession(ctx context.Context, identity string, st engine.State) {
	if err := s.sessions.Save(ctx, identity, st); err != nil && s.logger != nil {
		s.logger.Warn("save session failed", zap.String("identity", identity), zap.Error(err))
	}
}

func (s *SurveyService) view(st engine.State, records []domain.ResponseRecord) SurveyView {
	current := s.survey.Current(st)
	v := SurveyView{
		Phase:          s.survey.Phase(st),
		Cursor:         st.Cursor,
		Current:        current,
		Answered:       st.Responses.Len(),
		Target:         s.survey.Target(),
		CatalogSize:    s.survey.Catalog().Len(),
		Progress:       s.survey.Progress(st),
		PulseRemaining: s.survey.PulseRemaining(st, records, s.now()),
		Saved:          st.Saved,
	}
	if score, ok := st.Responses.Get(current.ID); ok {
		v.CurrentScore = &score
	}
	if q, ok := s.survey.NextUnanswered(st); ok {
		v.NextUnanswered = &q
	}
	return v
}
