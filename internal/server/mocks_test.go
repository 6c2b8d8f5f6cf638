package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/mkellner/talent-match/internal/ai"
	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/matching"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

// mockStore is an in-memory RecordStore with optional error injection.
type mockStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*db.Candidate
	jobs       map[uuid.UUID]*db.Job
	accounts   map[string]*db.Account
	failWith   error
}

func newMockStore() *mockStore {
	return &mockStore{
		candidates: make(map[uuid.UUID]*db.Candidate),
		jobs:       make(map[uuid.UUID]*db.Job),
		accounts:   make(map[string]*db.Account),
	}
}

func (m *mockStore) CreateCandidate(_ context.Context, c *db.Candidate) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.candidates[c.ID] = &cp
	return nil
}

func (m *mockStore) GetCandidate(_ context.Context, id uuid.UUID) (*db.Candidate, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) ListCandidates(_ context.Context, limit, offset int) ([]db.Candidate, int, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockStore) UpdateCandidate(_ context.Context, c *db.Candidate) (*db.Candidate, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; !ok {
		return nil, nil
	}
	cp := *c
	m.candidates[c.ID] = &cp
	return &cp, nil
}

func (m *mockStore) DeleteCandidate(_ context.Context, id uuid.UUID) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[id]; !ok {
		return false, nil
	}
	delete(m.candidates, id)
	return true, nil
}

func (m *mockStore) CreateJob(_ context.Context, j *db.Job) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *mockStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (m *mockStore) ListJobs(_ context.Context, limit, offset int) ([]db.Job, int, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	return out, len(out), nil
}

func (m *mockStore) UpdateJob(_ context.Context, j *db.Job) (*db.Job, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return nil, nil
	}
	cp := *j
	m.jobs[j.ID] = &cp
	return &cp, nil
}

func (m *mockStore) DeleteJob(_ context.Context, id uuid.UUID) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return false, nil
	}
	delete(m.jobs, id)
	return true, nil
}

func (m *mockStore) CreateAccount(_ context.Context, a *db.Account) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.Email]; ok {
		return db.ErrDuplicateEmail
	}
	cp := *a
	m.accounts[a.Email] = &cp
	return nil
}

func (m *mockStore) GetAccountByEmail(_ context.Context, email string) (*db.Account, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// mockIndex records index operations and serves canned match results.
type mockIndex struct {
	mu               sync.Mutex
	indexedCandidate map[uuid.UUID]*db.Candidate
	indexedJob       map[uuid.UUID]*db.Job
	removed          []string
	jobMatches       []matching.JobMatch
	candidateMatches []matching.CandidateMatch
	indexErr         error
	queryErr         error
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		indexedCandidate: make(map[uuid.UUID]*db.Candidate),
		indexedJob:       make(map[uuid.UUID]*db.Job),
	}
}

func (m *mockIndex) IndexCandidate(_ context.Context, c *db.Candidate) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.indexedCandidate[c.ID] = &cp
	return nil
}

func (m *mockIndex) IndexJob(_ context.Context, j *db.Job) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.indexedJob[j.ID] = &cp
	return nil
}

func (m *mockIndex) RemoveCandidate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, "candidate-"+id.String())
	return nil
}

func (m *mockIndex) RemoveJob(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, "job-"+id.String())
	return nil
}

func (m *mockIndex) JobsForCandidate(_ context.Context, id uuid.UUID, _ int) ([]matching.JobMatch, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexedCandidate[id]; !ok {
		return nil, &vectorstore.NotFoundError{ID: "candidate-" + id.String()}
	}
	return m.jobMatches, nil
}

func (m *mockIndex) CandidatesForJob(_ context.Context, id uuid.UUID, _ int) ([]matching.CandidateMatch, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexedJob[id]; !ok {
		return nil, &vectorstore.NotFoundError{ID: "job-" + id.String()}
	}
	return m.candidateMatches, nil
}

// mockAssistant returns fixed content and records its inputs.
type mockAssistant struct {
	mu           sync.Mutex
	evaluation   ai.Evaluation
	summary      string
	feedback     string
	summaryInput string
	evalCalls    int
}

func (m *mockAssistant) EvaluateMatch(_ context.Context, _, _ string) ai.Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evalCalls++
	return m.evaluation
}

func (m *mockAssistant) SummarizeResume(_ context.Context, resumeText string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaryInput = resumeText
	return m.summary
}

func (m *mockAssistant) CandidateFeedback(_ context.Context, _, _ string) string {
	return m.feedback
}

type mockFetcher struct {
	text string
	err  error
	urls []string
}

func (m *mockFetcher) FetchPostingText(_ context.Context, rawURL string) (string, error) {
	m.urls = append(m.urls, rawURL)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

var errBoom = errors.New("boom")

type testEnv struct {
	server    *Server
	store     *mockStore
	index     *mockIndex
	assistant *mockAssistant
	fetcher   *mockFetcher
}

func newTestEnv(cfg Config) *testEnv {
	env := &testEnv{
		store:     newMockStore(),
		index:     newMockIndex(),
		assistant: &mockAssistant{summary: "a summary", feedback: "some feedback"},
		fetcher:   &mockFetcher{},
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	env.server = New(cfg, env.store, env.index, env.assistant, env.fetcher, nil)
	return env
}
