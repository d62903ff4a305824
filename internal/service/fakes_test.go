package service

import (
	"context"
	"errors"
	"fmt"
	"ftareview/internal/cache"
	"ftareview/internal/engine"
	"ftareview/internal/model"
	"ftareview/internal/repository"
	"sort"
	"sync"
	"time"
)

type fakeSource struct {
	mu   sync.Mutex
	data engine.CatalogData
	err  error
	hits int
}

func (f *fakeSource) Load(ctx context.Context) (engine.CatalogData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	return f.data, f.err
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]model.Project
	seq      int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]model.Project)}
}

func (r *fakeProjectRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeProjectRepo) Create(ctx context.Context, p *model.Project) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.projects {
		if other.Name == p.Name {
			return "", repository.ErrDuplicateKey
		}
	}
	r.seq++
	p.ID = fmt.Sprintf("p%d", r.seq)
	p.CreatedAt = time.Date(2024, 1, r.seq, 0, 0, 0, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	r.projects[p.ID] = *p
	return p.ID, nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProjectRepo) GetByName(ctx context.Context, name string) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Project{}
	for _, p := range r.projects {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = *p
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers map[string]model.ProjectAnswers
	saveErr error
}

func (r *fakeAnswerRepo) Save(ctx context.Context, a *model.ProjectAnswers) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.answers == nil {
		r.answers = make(map[string]model.ProjectAnswers)
	}
	r.answers[a.ProjectID] = *a
	return nil
}

func (r *fakeAnswerRepo) GetByProjectID(ctx context.Context, id string) (*model.ProjectAnswers, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAnswerRepo) DeleteByProjectID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.answers, id)
	return nil
}

type fakeApplicabilityRepo struct {
	mu      sync.Mutex
	results map[string]model.ProjectApplicability
	reads   int
	saveErr error
}

func (r *fakeApplicabilityRepo) Save(ctx context.Context, a *model.ProjectApplicability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.results == nil {
		r.results = make(map[string]model.ProjectApplicability)
	}
	r.results[a.ProjectID] = *a
	return nil
}

func (r *fakeApplicabilityRepo) GetByProjectID(ctx context.Context, id string) (*model.ProjectApplicability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	a, ok := r.results[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeApplicabilityRepo) DeleteByProjectID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, id)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cache.Assessment
	failing bool
}

func (c *fakeCache) Get(ctx context.Context, id string) (*cache.Assessment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, errors.New("cache down")
	}
	e, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *fakeCache) Set(ctx context.Context, e *cache.Assessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("cache down")
	}
	if c.entries == nil {
		c.entries = make(map[string]cache.Assessment)
	}
	c.entries[e.ProjectID] = *e
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("cache down")
	}
	delete(c.entries, id)
	return nil
}

type event struct {
	projectID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []event
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToProject(projectID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{projectID, msgType, payload})
}

func (b *recordingBroadcaster) BroadcastToAll(msgType string, payload interface{}) {
	b.BroadcastToProject("*", msgType, payload)
}

func (b *recordingBroadcaster) DisconnectProject(projectID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, projectID)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.msgType
	}
	return out
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func testCatalogData() engine.CatalogData {
	return engine.CatalogData{
		Questions: []model.Question{
			{Number: 1, Key: "recipient_type", DisplayOrder: 1},
			{Number: 7, Key: "fund_types", DisplayOrder: 2},
		},
		Sections: []model.Section{
			{ID: "LEGAL", Title: "Legal", ChapterNumber: ptrI(1)},
			{ID: "5310", Title: "Section 5310 Program Requirements", ChapterNumber: ptrI(20)},
		},
		SubAreas: []model.SubArea{
			{ID: "X", SectionID: "LEGAL", LOE: model.LOE{Hours: ptrF(10), ConfidenceScore: ptrI(80)}},
			{ID: "Y", SectionID: "5310", LOE: model.LOE{Hours: ptrF(5), ConfidenceScore: ptrI(60)}},
			{ID: "Z", SectionID: "5310"},
		},
		Rules: []model.Rule{
			{ID: "rx", SubAreaID: "X", Conditions: []model.Condition{{QuestionKey: "recipient_type", Operator: model.OperatorEquals, ExpectedValue: "all"}}},
			{ID: "ry", SubAreaID: "Y", Conditions: []model.Condition{{QuestionKey: "fund_types", Operator: model.OperatorEquals, ExpectedValue: "5311"}}},
			{ID: "rz", SubAreaID: "Z", Conditions: []model.Condition{{QuestionKey: "fund_types", Operator: model.OperatorEquals, ExpectedValue: "5310"}}},
		},
	}
}
