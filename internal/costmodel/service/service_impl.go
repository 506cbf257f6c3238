package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"github.com/wajidashraf/CostModelAppTraining/internal/nrm2"
	"github.com/wajidashraf/CostModelAppTraining/internal/observability/metrics"
	"github.com/wajidashraf/CostModelAppTraining/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	maxProjectNameLen = 200
	maxProjectRefLen  = 50
	maxClientLen      = 200
	maxPreparedByLen  = 100
	maxElementNameLen = 200
	maxDescriptionLen = 500
	maxNotesLen       = 500
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      domain.Repository
	Templates nrm2.Source
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	templates nrm2.Source
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:       log.Named("costmodel.service"),
		repo:      p.Repo,
		templates: p.Templates,
		metrics:   p.Metrics,
	}
}

func (s *Service) ListModels(ctx context.Context) ([]domain.CostModel, error) {
	return s.repo.ListModels(ctx), nil
}

func (s *Service) GetModel(ctx context.Context, id string) (*domain.ModelDetail, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	model, ok := s.repo.FindModelByID(ctx, id)
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return newDetail(model, s.repo.ListWorksByModelID(ctx, id)), nil
}

// CreateModel stores a draft model pre-populated with one zero-valued
// measured work per NRM2 template element.
func (s *Service) CreateModel(ctx context.Context, req domain.CreateModelRequest) (*domain.ModelDetail, error) {
	model, err := s.buildModel(req)
	if err != nil {
		return nil, err
	}

	elements, err := s.templates.Defaults()
	if err != nil {
		s.metrics.RecordTemplateError()
		var cfgErr *nrm2.ConfigurationError
		if !errors.As(err, &cfgErr) {
			err = &nrm2.ConfigurationError{Source: "provider", Reason: "unavailable", Err: err}
		}
		return nil, err
	}

	works := make([]domain.MeasuredWork, 0, len(elements))
	for _, el := range elements {
		description := strings.TrimSpace(el.Description)
		if description == "" {
			description = el.Name
		}
		works = append(works, domain.MeasuredWork{
			ElementCode: el.Code,
			ElementName: el.Name,
			Description: description,
			Unit:        domain.Unit(el.SuggestedUnit),
		})
	}

	created, createdWorks := s.repo.CreateModelWithWorks(ctx, model, works)
	s.metrics.RecordModelCreated()
	s.observeStore(ctx)

	s.log.Info("cost model created",
		zap.String("cost_model_id", created.ID),
		zap.String("project_name", created.ProjectName),
		zap.Int("works", len(createdWorks)),
	)
	return newDetail(created, createdWorks), nil
}

func (s *Service) CalculateModel(ctx context.Context, id string) (*domain.CalculationResult, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	model, ok := s.repo.RecalculateModelTotalCost(ctx, id)
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	s.metrics.RecordRecalculation()

	s.log.Info("cost model recalculated",
		zap.String("cost_model_id", model.ID),
		zap.Float64("total_cost", model.TotalCost),
	)
	return &domain.CalculationResult{Model: model, TotalCost: model.TotalCost}, nil
}

// DeleteModel removes the model together with all of its measured works.
func (s *Service) DeleteModel(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	removed, ok := s.repo.DeleteModelCascade(ctx, id)
	if !ok {
		return domain.ErrModelNotFound
	}
	s.metrics.RecordModelDeleted()
	s.observeStore(ctx)

	s.log.Info("cost model deleted",
		zap.String("cost_model_id", id),
		zap.Int("works_removed", removed),
	)
	return nil
}

func (s *Service) ListWorks(ctx context.Context, req domain.ListWorksRequest) ([]domain.MeasuredWork, error) {
	if modelID := strings.TrimSpace(req.CostModelID); modelID != "" {
		return s.repo.ListWorksByModelID(ctx, modelID), nil
	}
	return s.repo.ListWorks(ctx), nil
}

func (s *Service) GetWork(ctx context.Context, id string) (*domain.MeasuredWork, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	work, ok := s.repo.FindWorkByID(ctx, id)
	if !ok {
		return nil, domain.ErrWorkNotFound
	}
	return &work, nil
}

// UpdateWork applies a partial update. The line total is recomputed only
// when quantity or unit rate are part of the patch; the parent model's
// total is left for the next explicit recalculation.
func (s *Service) UpdateWork(ctx context.Context, id string, patch domain.WorkPatch) (*domain.MeasuredWork, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	if patch.TouchesCost() {
		current, ok := s.repo.FindWorkByID(ctx, id)
		if !ok {
			return nil, domain.ErrWorkNotFound
		}
		if err := checkMergedTotal(current, patch); err != nil {
			return nil, err
		}
	}

	work, ok := s.repo.UpdateWork(ctx, id, patch)
	if !ok {
		if _, exists := s.repo.FindWorkByID(ctx, id); exists {
			return nil, domain.ErrTotalOutOfRange
		}
		return nil, domain.ErrWorkNotFound
	}
	s.metrics.RecordWorkUpdated(patch.TouchesCost())

	s.log.Debug("measured work updated",
		zap.String("measured_work_id", work.ID),
		zap.String("cost_model_id", work.CostModelID),
		zap.Bool("cost_changed", patch.TouchesCost()),
	)
	return &work, nil
}

func (s *Service) DeleteWork(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	if !s.repo.DeleteWork(ctx, id) {
		return domain.ErrWorkNotFound
	}
	s.metrics.RecordWorkDeleted()
	s.observeStore(ctx)

	s.log.Info("measured work deleted", zap.String("measured_work_id", id))
	return nil
}

func (s *Service) Templates(ctx context.Context) ([]nrm2.Element, error) {
	elements, err := s.templates.Defaults()
	if err != nil {
		s.metrics.RecordTemplateError()
		return nil, err
	}
	return elements, nil
}

func (s *Service) Stats(ctx context.Context) domain.StoreStats {
	return s.repo.Stats(ctx)
}

// SeedSample adds the priced sample model and its works to the store.
func (s *Service) SeedSample(ctx context.Context) *domain.ModelDetail {
	detail := seed.Seed(ctx, s.repo)
	s.metrics.RecordModelCreated()
	s.observeStore(ctx)

	s.log.Info("sample data seeded",
		zap.String("cost_model_id", detail.Model.ID),
		zap.Int("works", detail.WorksCount),
	)
	return &detail
}

func (s *Service) Clear(ctx context.Context) {
	s.repo.Clear(ctx)
	s.observeStore(ctx)
	s.log.Warn("in-memory store cleared")
}

func (s *Service) buildModel(req domain.CreateModelRequest) (domain.CostModel, error) {
	name := strings.TrimSpace(req.ProjectName)
	if name == "" || utf8.RuneCountInString(name) > maxProjectNameLen {
		return domain.CostModel{}, domain.ErrInvalidProjectName
	}

	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !status.IsValid() {
		return domain.CostModel{}, domain.ErrInvalidStatus
	}

	if req.GIFA != nil && (!domain.IsFinite(*req.GIFA) || *req.GIFA <= 0) {
		return domain.CostModel{}, domain.ErrInvalidGIFA
	}

	return domain.CostModel{
		ProjectName: name,
		ProjectRef:  truncate(strings.TrimSpace(req.ProjectRef), maxProjectRefLen),
		Client:      truncate(strings.TrimSpace(req.Client), maxClientLen),
		GIFA:        req.GIFA,
		Status:      status,
		PreparedBy:  truncate(strings.TrimSpace(req.PreparedBy), maxPreparedByLen),
	}, nil
}

func (s *Service) observeStore(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	stats := s.repo.Stats(ctx)
	s.metrics.ObserveStore(stats.Models, stats.Works)
}

func validatePatch(patch *domain.WorkPatch) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyUpdate
	}
	if patch.ElementCode != nil {
		code := strings.TrimSpace(*patch.ElementCode)
		if code == "" {
			return domain.ErrInvalidElementCode
		}
		patch.ElementCode = &code
	}
	if patch.ElementName != nil {
		name := strings.TrimSpace(*patch.ElementName)
		if name == "" || utf8.RuneCountInString(name) > maxElementNameLen {
			return domain.ErrInvalidElementName
		}
		patch.ElementName = &name
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" || utf8.RuneCountInString(desc) > maxDescriptionLen {
			return domain.ErrInvalidDescription
		}
		patch.Description = &desc
	}
	if patch.Quantity != nil && (!domain.IsFinite(*patch.Quantity) || *patch.Quantity < 0) {
		return domain.ErrInvalidQuantity
	}
	if patch.UnitRate != nil && (!domain.IsFinite(*patch.UnitRate) || *patch.UnitRate < 0) {
		return domain.ErrInvalidUnitRate
	}
	if patch.Unit != nil && !patch.Unit.IsValid() {
		return domain.ErrInvalidUnit
	}
	if patch.Notes != nil && utf8.RuneCountInString(*patch.Notes) > maxNotesLen {
		return domain.ErrInvalidNotes
	}
	return nil
}

// checkMergedTotal rejects a patch whose merged quantity and rate would
// produce a line total that cannot be stored.
func checkMergedTotal(current domain.MeasuredWork, patch domain.WorkPatch) error {
	quantity, rate := current.Quantity, current.UnitRate
	if patch.Quantity != nil {
		quantity = *patch.Quantity
	}
	if patch.UnitRate != nil {
		rate = *patch.UnitRate
	}
	if !domain.AmountInRange(domain.LineTotal(quantity, rate)) {
		return domain.ErrTotalOutOfRange
	}
	return nil
}

func newDetail(model domain.CostModel, works []domain.MeasuredWork) *domain.ModelDetail {
	if works == nil {
		works = []domain.MeasuredWork{}
	}
	return &domain.ModelDetail{Model: model, Works: works, WorksCount: len(works)}
}

func parseID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.ErrInvalidID
	}
	return id, nil
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}
