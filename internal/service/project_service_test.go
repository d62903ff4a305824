package service

import (
	"context"
	"errors"
	"ftareview/internal/engine"
	"ftareview/internal/metrics"
	"ftareview/internal/model"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ProjectServiceSuite struct {
	suite.Suite
	source        *fakeSource
	projects      *fakeProjectRepo
	answers       *fakeAnswerRepo
	applicability *fakeApplicabilityRepo
	cache         *fakeCache
	broadcaster   *recordingBroadcaster
	metrics       *metrics.Metrics
	catalogs      *CatalogService
	assessor      *AssessmentService
	service       *ProjectService
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func (s *ProjectServiceSuite) SetupTest() {
	logger := zap.NewNop()
	s.source = &fakeSource{data: testCatalogData()}
	s.projects = newFakeProjectRepo()
	s.answers = &fakeAnswerRepo{}
	s.applicability = &fakeApplicabilityRepo{}
	s.cache = &fakeCache{}
	s.broadcaster = &recordingBroadcaster{}
	s.metrics = metrics.New(prometheus.NewRegistry())

	s.catalogs = NewCatalogService(s.source, s.metrics, logger)
	_, err := s.catalogs.Reload(context.Background())
	s.Require().NoError(err)

	s.assessor = NewAssessmentService(s.catalogs, engine.OrderByHoursDesc, s.metrics, logger)
	s.service = NewProjectService(s.projects, s.answers, s.applicability, s.cache, s.catalogs, s.assessor, logger)
	s.service.SetBroadcaster(s.broadcaster)
}

func (s *ProjectServiceSuite) create(name string) *model.Project {
	p, err := s.service.Create(context.Background(), &model.Project{Name: name})
	s.Require().NoError(err)
	return p
}

func (s *ProjectServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("trims and stores", func() {
		p, err := s.service.Create(ctx, &model.Project{Name: "  Metro Transit  ", GranteeName: "Metro"})
		s.Require().NoError(err)
		s.NotEmpty(p.ID)
		s.Equal("Metro Transit", p.Name)
	})

	s.Run("blank name rejected", func() {
		_, err := s.service.Create(ctx, &model.Project{Name: "   "})
		s.ErrorIs(err, ErrInvalidInput)
	})

	s.Run("duplicate name rejected", func() {
		_, err := s.service.Create(ctx, &model.Project{Name: "Metro Transit"})
		s.ErrorIs(err, ErrDuplicateName)
	})
}

func (s *ProjectServiceSuite) TestGetAndList() {
	ctx := context.Background()
	first := s.create("First")
	second := s.create("Second")

	got, err := s.service.Get(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("First", got.Name)

	_, err = s.service.Get(ctx, "missing")
	s.ErrorIs(err, ErrNotFound)

	list, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
}

func (s *ProjectServiceSuite) TestUpdate() {
	ctx := context.Background()
	p := s.create("Alpha")
	s.create("Beta")

	s.Run("partial update keeps other fields", func() {
		desc := "triennial review"
		got, err := s.service.Update(ctx, p.ID, &model.ProjectUpdate{Description: &desc})
		s.Require().NoError(err)
		s.Equal("Alpha", got.Name)
		s.Equal("triennial review", got.Description)
	})

	s.Run("rename to taken name", func() {
		name := "Beta"
		_, err := s.service.Update(ctx, p.ID, &model.ProjectUpdate{Name: &name})
		s.ErrorIs(err, ErrDuplicateName)
	})

	s.Run("rename to own name", func() {
		name := "Alpha"
		_, err := s.service.Update(ctx, p.ID, &model.ProjectUpdate{Name: &name})
		s.NoError(err)
	})

	s.Run("blank name", func() {
		name := " "
		_, err := s.service.Update(ctx, p.ID, &model.ProjectUpdate{Name: &name})
		s.ErrorIs(err, ErrInvalidInput)
	})

	s.Run("missing project", func() {
		_, err := s.service.Update(ctx, "missing", &model.ProjectUpdate{})
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *ProjectServiceSuite) TestSubmitAnswers() {
	ctx := context.Background()
	p := s.create("Metro")

	result, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{
		"recipient_type": "non_state",
		"fund_types":     "5307,5310",
	})
	s.Require().NoError(err)
	s.Equal(p.ID, result.ProjectID)
	s.Equal(2, result.ApplicableCount)
	s.Equal("X", result.ApplicableSubAreas[0].SubAreaID)
	s.Equal("Z", result.ApplicableSubAreas[1].SubAreaID)

	stored, _ := s.applicability.GetByProjectID(ctx, p.ID)
	s.Require().NotNil(stored)
	s.Equal([]string{"X", "Z"}, stored.SubAreaIDs)

	answers, err := s.service.GetAnswers(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("5307,5310", answers.Answers["fund_types"])

	s.Contains(s.broadcaster.types(), EventApplicabilityUpdated)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Evaluations.WithLabelValues(metrics.SourceProject)))

	s.Run("resubmission replaces", func() {
		result, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"fund_types": "5311"})
		s.Require().NoError(err)
		s.Equal(1, result.ApplicableCount)
		s.Equal("Y", result.ApplicableSubAreas[0].SubAreaID)

		answers, err := s.service.GetAnswers(ctx, p.ID)
		s.Require().NoError(err)
		_, ok := answers.Answers["recipient_type"]
		s.False(ok)
	})

	s.Run("nil answers rejected", func() {
		_, err := s.service.SubmitAnswers(ctx, p.ID, nil)
		s.ErrorIs(err, ErrInvalidInput)
	})

	s.Run("missing project", func() {
		_, err := s.service.SubmitAnswers(ctx, "missing", model.AnswerSet{})
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *ProjectServiceSuite) TestSubmitAnswers_FailedWritesStayConsistent() {
	ctx := context.Background()
	p := s.create("Metro")

	_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"fund_types": "5310"})
	s.Require().NoError(err)

	check := func(fundTypes string, subAreas ...string) {
		answers, err := s.service.GetAnswers(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(fundTypes, answers.Answers["fund_types"])

		result, err := s.service.ApplicableSubAreas(ctx, p.ID)
		s.Require().NoError(err)
		ids := make([]string, len(result.ApplicableSubAreas))
		for i, sa := range result.ApplicableSubAreas {
			ids[i] = sa.SubAreaID
		}
		s.Equal(subAreas, ids)
	}

	s.Run("applicability write fails", func() {
		s.applicability.saveErr = errors.New("write conflict")
		defer func() { s.applicability.saveErr = nil }()

		_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"fund_types": "5311"})
		s.Error(err)
		check("5310", "Z")
	})

	s.Run("answer write fails", func() {
		s.answers.saveErr = errors.New("write conflict")
		defer func() { s.answers.saveErr = nil }()

		_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"fund_types": "5311"})
		s.Error(err)
		check("5310", "Z")
	})

	s.Run("first submission fails", func() {
		fresh := s.create("Fresh")
		s.answers.saveErr = errors.New("write conflict")
		defer func() { s.answers.saveErr = nil }()

		_, err := s.service.SubmitAnswers(ctx, fresh.ID, model.AnswerSet{"fund_types": "5311"})
		s.Error(err)
		stored, _ := s.applicability.GetByProjectID(ctx, fresh.ID)
		s.Nil(stored)
	})

	s.Run("later submission succeeds", func() {
		_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"fund_types": "5311"})
		s.Require().NoError(err)
		check("5311", "Y")
	})
}

func (s *ProjectServiceSuite) TestSharedCacheAcrossCatalogInstances() {
	ctx := context.Background()
	p := s.create("Metro")

	_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"recipient_type": "state"})
	s.Require().NoError(err)
	summary, err := s.service.LOESummary(ctx, p.ID)
	s.Require().NoError(err)
	s.InDelta(10.0, summary.TotalHours, 1e-9)

	// A second replica, or this one after a restart, with X re-estimated
	data := testCatalogData()
	data.SubAreas[0].Hours = ptrF(99)
	catalogs := NewCatalogService(&fakeSource{data: data}, nil, zap.NewNop())
	_, err = catalogs.Reload(ctx)
	s.Require().NoError(err)
	assessor := NewAssessmentService(catalogs, engine.OrderByHoursDesc, nil, zap.NewNop())
	replica := NewProjectService(s.projects, s.answers, s.applicability, s.cache, catalogs, assessor, zap.NewNop())

	summary, err = replica.LOESummary(ctx, p.ID)
	s.Require().NoError(err)
	s.InDelta(99.0, summary.TotalHours, 1e-9)

	summary, err = s.service.LOESummary(ctx, p.ID)
	s.Require().NoError(err)
	s.InDelta(10.0, summary.TotalHours, 1e-9)
}

func (s *ProjectServiceSuite) TestGetAnswers_NoneSubmitted() {
	p := s.create("Fresh")

	answers, err := s.service.GetAnswers(context.Background(), p.ID)
	s.Require().NoError(err)
	s.NotNil(answers.Answers)
	s.Empty(answers.Answers)
}

func (s *ProjectServiceSuite) TestApplicableSubAreasAndSummary() {
	ctx := context.Background()
	p := s.create("Metro")

	s.Run("no answers yet", func() {
		result, err := s.service.ApplicableSubAreas(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(0, result.ApplicableCount)
		s.NotNil(result.ApplicableSubAreas)

		summary, err := s.service.LOESummary(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Metro", summary.ProjectName)
		s.Zero(summary.TotalHours)
	})

	_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"recipient_type": "state", "fund_types": "5311"})
	s.Require().NoError(err)

	s.Run("served from cache", func() {
		reads := s.applicability.reads
		summary, err := s.service.LOESummary(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(reads, s.applicability.reads)
		s.Equal(p.ID, summary.ProjectID)
		s.Equal(2, summary.TotalSubAreas)
		s.InDelta(15.0, summary.TotalHours, 1e-9)
		s.InDelta(70.0, summary.AvgConfidenceScore, 1e-9)
		s.Equal("LEGAL", summary.Sections[0].SectionID)
	})

	s.Run("reload of identical catalog keeps cache", func() {
		_, err := s.catalogs.Reload(ctx)
		s.Require().NoError(err)

		reads := s.applicability.reads
		_, err = s.service.ApplicableSubAreas(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(reads, s.applicability.reads)
	})

	s.Run("changed catalog makes cache stale", func() {
		data := testCatalogData()
		data.SubAreas[0].Hours = ptrF(20)
		s.source.data = data
		_, err := s.catalogs.Reload(ctx)
		s.Require().NoError(err)

		reads := s.applicability.reads
		summary, err := s.service.LOESummary(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(reads+1, s.applicability.reads)
		s.Equal(2, summary.TotalSubAreas)
		s.InDelta(25.0, summary.TotalHours, 1e-9)
	})

	s.Run("cache outage falls back to store", func() {
		s.cache.failing = true
		defer func() { s.cache.failing = false }()

		result, err := s.service.ApplicableSubAreas(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(2, result.ApplicableCount)
	})

	s.Run("missing project", func() {
		_, err := s.service.LOESummary(ctx, "missing")
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *ProjectServiceSuite) TestDelete() {
	ctx := context.Background()
	p := s.create("Doomed")
	_, err := s.service.SubmitAnswers(ctx, p.ID, model.AnswerSet{"recipient_type": "all"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(ctx, p.ID))

	_, err = s.service.Get(ctx, p.ID)
	s.ErrorIs(err, ErrNotFound)
	a, _ := s.answers.GetByProjectID(ctx, p.ID)
	s.Nil(a)
	r, _ := s.applicability.GetByProjectID(ctx, p.ID)
	s.Nil(r)
	e, _ := s.cache.Get(ctx, p.ID)
	s.Nil(e)
	s.Equal([]string{p.ID}, s.broadcaster.disconnected)

	s.ErrorIs(s.service.Delete(ctx, p.ID), ErrNotFound)
}

func (s *ProjectServiceSuite) TestCatalogNotLoaded() {
	svc := NewProjectService(s.projects, s.answers, s.applicability, s.cache,
		NewCatalogService(&fakeSource{}, nil, zap.NewNop()), s.assessor, zap.NewNop())
	p := s.create("Early")

	_, err := svc.SubmitAnswers(context.Background(), p.ID, model.AnswerSet{})
	s.ErrorIs(err, ErrCatalogNotLoaded)
}

func (s *ProjectServiceSuite) TestAssessAdHoc() {
	a, err := s.assessor.Assess(context.Background(), model.AnswerSet{"recipient_type": "non_state", "fund_types": "5307,5310"})
	s.Require().NoError(err)
	s.Equal(2, a.Result.ApplicableCount)
	s.Empty(a.Result.ProjectID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Evaluations.WithLabelValues(metrics.SourceAdHoc)))
}
