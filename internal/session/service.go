package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-videoquote/internal/generation"
	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/lock"
	"github.com/noah-isme/backend-videoquote/internal/obs"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
	"github.com/noah-isme/backend-videoquote/internal/quote"
	"github.com/noah-isme/backend-videoquote/internal/share"
)

const (
	defaultLockTTL  = 90 * time.Second
	defaultEditWait = 5 * time.Second
)

// Service coordinates working sessions. Generation runs under a per-session
// try-lock; selection edits serialise on a separate short-lived lock so they
// are not blocked by a slow generation call.
type Service struct {
	Repo      Repo
	Locker    lock.Locker
	LockTTL   time.Duration
	EditWait  time.Duration
	Generator generation.Generator
	MaxPool   int
	IDs       *idea.IDSource
	Builder   quote.Builder
	Shares    *share.Service
	Now       func() time.Time
}

// CreateInput starts a session.
type CreateInput struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Activity    string `json:"activity" validate:"max=2000"`
	Language    string `json:"language" validate:"omitempty,oneof=es en fr de it pt"`
}

// UpdateInput changes the company data used for later generations. Empty
// fields are left as they are.
type UpdateInput struct {
	CompanyName string `json:"companyName" validate:"max=200"`
	Activity    string `json:"activity" validate:"max=2000"`
	Language    string `json:"language" validate:"omitempty,oneof=es en fr de it pt"`
}

// View is a session together with its current selection and price.
type View struct {
	Session       Session          `json:"session"`
	SelectedIdeas []idea.VideoIdea `json:"selectedIdeas"`
	Quote         pricing.Quote    `json:"quote"`
	Remaining     int              `json:"remaining"`
}

// GenerateResult is the outcome of one generation call.
type GenerateResult struct {
	Ideas []idea.VideoIdea `json:"ideas"`
	View  View             `json:"view"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return defaultLockTTL
	}
	return s.LockTTL
}

func (s *Service) maxPool() int {
	if s.MaxPool <= 0 {
		return generation.DefaultMaxPool
	}
	return s.MaxPool
}

// View prices the current selection of sess.
func (s *Service) View(sess Session) View {
	selected := sess.SelectedIdeas()
	remaining := s.maxPool() - len(sess.Pool)
	if remaining < 0 {
		remaining = 0
	}
	if sess.Pool == nil {
		sess.Pool = []idea.VideoIdea{}
	}
	if sess.Selected == nil {
		sess.Selected = []string{}
	}
	return View{
		Session:       sess,
		SelectedIdeas: selected,
		Quote:         pricing.ComputeQuote(s.Builder.Engine, selected),
		Remaining:     remaining,
	}
}

// Create stores a new empty session.
func (s *Service) Create(ctx context.Context, in CreateInput) (Session, error) {
	company := strings.TrimSpace(in.CompanyName)
	if company == "" {
		return Session{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	lang, err := normalizeLanguage(in.Language)
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	sess := Session{
		ID:          uuid.NewString(),
		CompanyName: company,
		Activity:    strings.TrimSpace(in.Activity),
		Language:    lang,
		Pool:        []idea.VideoIdea{},
		Selected:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	zerolog.Ctx(ctx).Info().Str("session_id", sess.ID).Msg("session_created")
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.Repo.Get(ctx, id)
}

// Update changes company data of an existing session.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Session, error) {
	return s.edit(ctx, id, func(sess *Session) error {
		if v := strings.TrimSpace(in.CompanyName); v != "" {
			sess.CompanyName = v
		}
		if v := strings.TrimSpace(in.Activity); v != "" {
			sess.Activity = v
		}
		if in.Language != "" {
			lang, err := normalizeLanguage(in.Language)
			if err != nil {
				return err
			}
			sess.Language = lang
		}
		return nil
	})
}

// Generate requests count new ideas and appends them to the session pool. A
// second call while one is running fails with ErrBusy.
func (s *Service) Generate(ctx context.Context, id string, count int) (GenerateResult, error) {
	start := time.Now()
	var out GenerateResult
	err := s.Locker.TryLock(ctx, "gen:"+id, s.lockTTL(), func(ctx context.Context) error {
		sess, err := s.Repo.Get(ctx, id)
		if err != nil {
			return err
		}
		gen := generation.NewSession(s.Generator, s.maxPool(), sess.Pool)
		gen.IDs = s.IDs
		batch, err := gen.Generate(ctx, generation.Request{
			CompanyName: sess.CompanyName,
			Activity:    sess.Activity,
			Language:    sess.Language,
			Count:       count,
		})
		if err != nil {
			return err
		}
		// The pool only grows under the generation lock, so appending to the
		// reloaded session keeps the capacity check valid.
		updated, err := s.edit(ctx, id, func(sess *Session) error {
			sess.Pool = append(sess.Pool, batch...)
			return nil
		})
		if err != nil {
			return err
		}
		out = GenerateResult{Ideas: batch, View: s.View(updated)}
		return nil
	})
	if errors.Is(err, lock.ErrLocked) {
		err = ErrBusy
	}
	result := generationResult(err)
	obs.ObserveGeneration(result, time.Since(start), len(out.Ideas))
	log := zerolog.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("session_id", id).Str("result", result).Msg("idea_generation_failed")
		return GenerateResult{}, err
	}
	log.Info().Str("session_id", id).Int("ideas", len(out.Ideas)).Dur("took", time.Since(start)).Msg("ideas_generated")
	return out, nil
}

func generationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, generation.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, generation.ErrPoolFull):
		return "pool_full"
	case errors.Is(err, generation.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, generation.ErrCountMismatch):
		return "count_mismatch"
	case errors.Is(err, generation.ErrGenerationFailed):
		return "failed"
	default:
		return "error"
	}
}

// Toggle flips the selection state of ideaID and reports whether it is now selected.
func (s *Service) Toggle(ctx context.Context, id, ideaID string) (View, bool, error) {
	var selected bool
	sess, err := s.edit(ctx, id, func(sess *Session) error {
		sel := sess.Selection()
		on, err := sel.Toggle(ideaID)
		if err != nil {
			return err
		}
		selected = on
		sess.applySelection(sel)
		return nil
	})
	if err != nil {
		return View{}, false, err
	}
	return s.View(sess), selected, nil
}

// Remove deselects ideaID. Unknown or unselected ids are ignored.
func (s *Service) Remove(ctx context.Context, id, ideaID string) (View, error) {
	sess, err := s.edit(ctx, id, func(sess *Session) error {
		sel := sess.Selection()
		sel.Remove(ideaID)
		sess.applySelection(sel)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.View(sess), nil
}

// Clear empties the selection.
func (s *Service) Clear(ctx context.Context, id string) (View, error) {
	sess, err := s.edit(ctx, id, func(sess *Session) error {
		sess.Selected = []string{}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.View(sess), nil
}

// Quote returns the priced view of a session.
func (s *Service) Quote(ctx context.Context, id string) (View, error) {
	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.View(sess), nil
}

// Document builds the order document for the current selection. An empty
// locale uses the session language.
func (s *Service) Document(ctx context.Context, id, locale string) (quote.Document, error) {
	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return quote.Document{}, err
	}
	if locale == "" {
		locale = sess.Language
	}
	return s.Builder.Build(quote.Input{
		Ideas:       sess.SelectedIdeas(),
		CompanyName: sess.CompanyName,
		Locale:      locale,
	})
}

// Share persists a snapshot of the session and returns it.
func (s *Service) Share(ctx context.Context, id string) (share.Snapshot, error) {
	if s.Shares == nil {
		return share.Snapshot{}, errors.New("session: share service not configured")
	}
	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return share.Snapshot{}, err
	}
	snap, err := s.Shares.Create(ctx, share.CreateInput{
		CompanyName:   sess.CompanyName,
		Activity:      sess.Activity,
		AllIdeas:      sess.Pool,
		SelectedIdeas: sess.SelectedIdeas(),
	})
	if err != nil {
		return share.Snapshot{}, err
	}
	zerolog.Ctx(ctx).Info().Str("session_id", id).Str("share_id", snap.ID).Msg("session_shared")
	return snap, nil
}

// edit applies fn to the stored session under the edit lock and saves the result.
func (s *Service) edit(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	wait := s.EditWait
	if wait <= 0 {
		wait = defaultEditWait
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var out Session
	err := s.Locker.WithLock(waitCtx, "edit:"+id, wait, func(lctx context.Context) error {
		sess, err := s.Repo.Get(lctx, id)
		if err != nil {
			return err
		}
		if err := fn(&sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now()
		if err := s.Repo.Save(lctx, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return Session{}, ErrBusy
	}
	return out, err
}

func normalizeLanguage(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return generation.DefaultLanguage, nil
	}
	if _, ok := generation.LanguageName(code); !ok {
		return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, code)
	}
	return code, nil
}
