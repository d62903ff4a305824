package service

import (
	"context"
	"ftareview/internal/engine"
	"ftareview/internal/metrics"
	"ftareview/internal/model"
	"time"

	"go.uber.org/zap"
)

// AssessmentService evaluates answer sets against the current catalog
type AssessmentService struct {
	catalogs *CatalogService
	order    engine.SectionOrder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAssessmentService creates a new assessment service. m may be nil.
func NewAssessmentService(catalogs *CatalogService, order engine.SectionOrder, m *metrics.Metrics, logger *zap.Logger) *AssessmentService {
	return &AssessmentService{
		catalogs: catalogs,
		order:    order,
		metrics:  m,
		logger:   logger,
	}
}

// Assess runs an ad hoc evaluation that is not stored anywhere
func (s *AssessmentService) Assess(ctx context.Context, answers model.AnswerSet) (*engine.Assessment, error) {
	catalog, err := s.catalogs.Current()
	if err != nil {
		return nil, err
	}
	a := s.run(catalog, answers, metrics.SourceAdHoc)
	return &a, nil
}

// run evaluates answers and records metrics
func (s *AssessmentService) run(catalog *engine.Catalog, answers model.AnswerSet, source string) engine.Assessment {
	start := time.Now()
	a := engine.Assess(catalog, answers, s.order)
	took := time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveEvaluation(source, a.Result.ApplicableCount, took)
	}
	s.logger.Debug("answers evaluated",
		zap.String("source", source),
		zap.Int("applicable", a.Result.ApplicableCount),
		zap.Duration("took", took),
	)
	return a
}

// Order returns the section order used for summaries
func (s *AssessmentService) Order() engine.SectionOrder {
	return s.order
}
