package service

import (
	"context"
	"errors"
	"fmt"
	"ftareview/internal/cache"
	"ftareview/internal/engine"
	"ftareview/internal/metrics"
	"ftareview/internal/model"
	"ftareview/internal/repository"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProjectService handles projects, their answers and stored applicability
type ProjectService struct {
	projectRepo       repository.ProjectRepo
	answerRepo        repository.AnswerRepo
	applicabilityRepo repository.ApplicabilityRepo
	assessmentCache   cache.AssessmentCache
	catalogs          *CatalogService
	assessor          *AssessmentService
	broadcaster       Broadcaster
	logger            *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repository.ProjectRepo,
	answerRepo repository.AnswerRepo,
	applicabilityRepo repository.ApplicabilityRepo,
	assessmentCache cache.AssessmentCache,
	catalogs *CatalogService,
	assessor *AssessmentService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:       projectRepo,
		answerRepo:        answerRepo,
		applicabilityRepo: applicabilityRepo,
		assessmentCache:   assessmentCache,
		catalogs:          catalogs,
		assessor:          assessor,
		broadcaster:       nopBroadcaster{},
		logger:            logger,
	}
}

// SetBroadcaster sets the broadcaster used for project events
func (s *ProjectService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create creates a new project. Names are unique.
func (s *ProjectService) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	existing, err := s.projectRepo.GetByName(ctx, project.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check project name: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	project.ID = ""
	if _, err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("name", project.Name))
	return project, nil
}

// Get retrieves a project by ID
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// List returns all projects, newest first
func (s *ProjectService) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Update applies a partial update
func (s *ProjectService) Update(ctx context.Context, id string, update *model.ProjectUpdate) (*model.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if name != project.Name {
			other, err := s.projectRepo.GetByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to check project name: %w", err)
			}
			if other != nil {
				return nil, ErrDuplicateName
			}
		}
		update.Name = &name
	}

	update.Apply(project)
	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.invalidate(ctx, id)
	return project, nil
}

// Delete removes a project with its answers and applicability
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.answerRepo.DeleteByProjectID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	if err := s.applicabilityRepo.DeleteByProjectID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete applicability: %w", err)
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.invalidate(ctx, id)

	s.broadcaster.BroadcastToProject(id, EventProjectDeleted, map[string]string{"project_id": id})
	s.broadcaster.DisconnectProject(id)
	s.logger.Info("project deleted", zap.String("project_id", id))
	return nil
}

// SubmitAnswers replaces the project's answer set, re-evaluates
// applicability in full and stores the outcome. Applicability is written
// before the answers; if the answer write fails the previous applicability
// is put back so the two records never describe different answer sets.
func (s *ProjectService) SubmitAnswers(ctx context.Context, id string, answers model.AnswerSet) (*model.ApplicabilityResult, error) {
	if answers == nil {
		return nil, fmt.Errorf("%w: answers are required", ErrInvalidInput)
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Current()
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	a := s.assessor.run(catalog, answers, metrics.SourceProject)

	previous, err := s.applicabilityRepo.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get applicability: %w", err)
	}
	now := time.Now().UTC()
	if err := s.applicabilityRepo.Save(ctx, &model.ProjectApplicability{
		ProjectID:   id,
		SubAreaIDs:  a.Trace.Applicable().IDs(),
		EvaluatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to save applicability: %w", err)
	}

	if err := s.answerRepo.Save(ctx, &model.ProjectAnswers{
		ProjectID:   id,
		Answers:     answers.Clone(),
		SubmittedAt: now,
	}); err != nil {
		s.restoreApplicability(ctx, id, previous)
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}

	entry := s.entry(project, catalog.Fingerprint(), a.Result, a.Summary)
	s.store(ctx, entry)

	s.broadcaster.BroadcastToProject(id, EventApplicabilityUpdated, entry.Summary)
	return &entry.Result, nil
}

// restoreApplicability puts back the applicability stored before a failed submit
func (s *ProjectService) restoreApplicability(ctx context.Context, id string, previous *model.ProjectApplicability) {
	var err error
	if previous == nil {
		err = s.applicabilityRepo.DeleteByProjectID(ctx, id)
	} else {
		err = s.applicabilityRepo.Save(ctx, previous)
	}
	if err != nil {
		s.logger.Error("failed to restore applicability", zap.String("project_id", id), zap.Error(err))
	}
	s.invalidate(ctx, id)
}

// GetAnswers returns the project's current answers; empty if none were submitted
func (s *ProjectService) GetAnswers(ctx context.Context, id string) (*model.ProjectAnswers, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	if answers == nil {
		return &model.ProjectAnswers{ProjectID: id, Answers: model.AnswerSet{}}, nil
	}
	return answers, nil
}

// ApplicableSubAreas returns the stored applicability of a project, hydrated
// against the current catalog
func (s *ProjectService) ApplicableSubAreas(ctx context.Context, id string) (*model.ApplicabilityResult, error) {
	entry, err := s.assessment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entry.Result, nil
}

// LOESummary returns the project's level-of-effort roll-up
func (s *ProjectService) LOESummary(ctx context.Context, id string) (*model.LOESummary, error) {
	entry, err := s.assessment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entry.Summary, nil
}

// assessment resolves a project's assessment from the cache, falling back to
// the stored applicability and the current catalog
func (s *ProjectService) assessment(ctx context.Context, id string) (*cache.Assessment, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Current()
	if err != nil {
		return nil, err
	}
	fingerprint := catalog.Fingerprint()

	cached, err := s.assessmentCache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("assessment cache read failed", zap.String("project_id", id), zap.Error(err))
	}
	if cached != nil && cached.CatalogFingerprint == fingerprint {
		cached.Summary.ProjectName = project.Name
		return cached, nil
	}

	stored, err := s.applicabilityRepo.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get applicability: %w", err)
	}
	var ids engine.SubAreaSet
	if stored != nil {
		ids = engine.NewSubAreaSet(stored.SubAreaIDs...)
	}

	subAreas := engine.Enrich(catalog, ids)
	result := model.ApplicabilityResult{
		ApplicableCount:    len(subAreas),
		ApplicableSubAreas: subAreas,
	}
	entry := s.entry(project, fingerprint, result, engine.Aggregate(subAreas, s.assessor.Order()))
	s.store(ctx, entry)
	return entry, nil
}

func (s *ProjectService) entry(project *model.Project, fingerprint string, result model.ApplicabilityResult, summary model.LOESummary) *cache.Assessment {
	result.ProjectID = project.ID
	summary.ProjectID = project.ID
	summary.ProjectName = project.Name
	return &cache.Assessment{
		ProjectID:          project.ID,
		CatalogFingerprint: fingerprint,
		Result:             result,
		Summary:            summary,
	}
}

func (s *ProjectService) store(ctx context.Context, entry *cache.Assessment) {
	if err := s.assessmentCache.Set(ctx, entry); err != nil {
		s.logger.Warn("assessment cache write failed", zap.String("project_id", entry.ProjectID), zap.Error(err))
	}
}

func (s *ProjectService) invalidate(ctx context.Context, id string) {
	if err := s.assessmentCache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("assessment cache invalidate failed", zap.String("project_id", id), zap.Error(err))
	}
}
