package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/repository/contract"
	"ai-coaching-be/internal/repository/specification"
	"ai-coaching-be/pkg/llm"

	"github.com/google/uuid"
)

// fakeSessionRepo is an in-memory DiagnosticSessionRepository with real CAS
// semantics, so service tests exercise the same conflict paths as the gorm
// implementation.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.DiagnosticSession

	failNextCAS bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.DiagnosticSession)}
}

func cloneSession(s *entity.DiagnosticSession) *entity.DiagnosticSession {
	data, _ := json.Marshal(s)
	var out entity.DiagnosticSession
	_ = json.Unmarshal(data, &out)
	return &out
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.DiagnosticSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	r.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.DiagnosticSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if s, found := r.sessions[byID.ID]; found {
				return cloneSession(s), nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.DiagnosticSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.DiagnosticSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) FindLatestByEmail(_ context.Context, email string) (*entity.DiagnosticSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.DiagnosticSession
	for _, s := range r.sessions {
		if s.Email != email {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneSession(latest), nil
}

func (r *fakeSessionRepo) UpdateCAS(_ context.Context, session *entity.DiagnosticSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextCAS {
		r.failNextCAS = false
		return contract.ErrVersionConflict
	}
	stored, ok := r.sessions[session.Id]
	if !ok || stored.Version != session.Version {
		return contract.ErrVersionConflict
	}
	session.Version++
	r.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *fakeSessionRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	if s, ok := r.sessions[parsed]; ok {
		s.Active = active
		return nil
	}
	return errors.New("not found")
}

func (r *fakeSessionRepo) SetReviewStatus(_ context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	if s, ok := r.sessions[parsed]; ok {
		s.ReviewStatus = status
		return nil
	}
	return errors.New("not found")
}

func (r *fakeSessionRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sessions)), nil
}

// fakeProvider scripts completions in order. An empty script entry simulates
// a transport failure.
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
	fail      bool
}

func (p *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return "", errors.New("upstream unavailable")
	}
	if len(p.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	next := p.responses[0]
	p.responses = p.responses[1:]
	return next, nil
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
