// Package repository provides the in-memory store for cost models and
// their measured works.
package repository

import (
	"context"
	"sync"

	"github.com/wajidashraf/CostModelAppTraining/internal/clock"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"github.com/wajidashraf/CostModelAppTraining/internal/idgen"
)

var _ domain.Repository = (*Store)(nil)

type state struct {
	models     map[string]domain.CostModel
	works      map[string]domain.MeasuredWork
	modelOrder []string
	workOrder  []string
}

func newState() state {
	return state{
		models: make(map[string]domain.CostModel),
		works:  make(map[string]domain.MeasuredWork),
	}
}

// Store keeps both collections indexed by id, with slices preserving
// creation order for listings.
type Store struct {
	mu    sync.RWMutex
	state state
	ids   idgen.Generator
	clock clock.Clock
}

func New(ids idgen.Generator, clk clock.Clock) *Store {
	return &Store{
		state: newState(),
		ids:   ids,
		clock: clk,
	}
}

// Provide exposes the store behind the domain interface.
func Provide(ids idgen.Generator, clk clock.Clock) domain.Repository {
	return New(ids, clk)
}

func (s *Store) CreateModel(_ context.Context, model domain.CostModel) domain.CostModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertModel(model).Clone()
}

// CreateModelWithWorks stores a model and its initial works in one step;
// each work's CostModelID is set to the new model id.
func (s *Store) CreateModelWithWorks(_ context.Context, model domain.CostModel, works []domain.MeasuredWork) (domain.CostModel, []domain.MeasuredWork) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.insertModel(model)
	out := make([]domain.MeasuredWork, 0, len(works))
	for _, w := range works {
		w.CostModelID = created.ID
		out = append(out, s.insertWork(w))
	}
	return created.Clone(), out
}

func (s *Store) FindModelByID(_ context.Context, id string) (domain.CostModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.models[id]
	if !ok {
		return domain.CostModel{}, false
	}
	return m.Clone(), true
}

func (s *Store) ListModels(_ context.Context) []domain.CostModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CostModel, 0, len(s.state.modelOrder))
	for _, id := range s.state.modelOrder {
		out = append(out, s.state.models[id].Clone())
	}
	return out
}

// UpdateModelTotalCost overwrites the stored total without looking at the
// model's works. Negative, non-finite or oversized totals are refused.
func (s *Store) UpdateModelTotalCost(_ context.Context, id string, totalCost float64) (domain.CostModel, bool) {
	if !domain.AmountInRange(totalCost) {
		return domain.CostModel{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.state.models[id]
	if !ok {
		return domain.CostModel{}, false
	}
	m.TotalCost = domain.Round2(totalCost)
	m.UpdatedAt = s.clock.Now()
	s.state.models[id] = m
	return m.Clone(), true
}

// RecalculateModelTotalCost derives the model total from its current works.
func (s *Store) RecalculateModelTotalCost(_ context.Context, id string) (domain.CostModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.state.models[id]
	if !ok {
		return domain.CostModel{}, false
	}
	m.TotalCost = domain.ModelTotal(s.worksByModelLocked(id))
	m.UpdatedAt = s.clock.Now()
	s.state.models[id] = m
	return m.Clone(), true
}

// DeleteModel removes only the model; its works are left in place.
func (s *Store) DeleteModel(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteModelLocked(id)
}

// DeleteModelCascade removes the model's works and then the model while
// holding the write lock, so no reader sees a half-deleted model.
func (s *Store) DeleteModelCascade(_ context.Context, id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.models[id]; !ok {
		return 0, false
	}
	removed := s.deleteWorksByModelLocked(id)
	s.deleteModelLocked(id)
	return removed, true
}

func (s *Store) CreateWork(_ context.Context, work domain.MeasuredWork) domain.MeasuredWork {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertWork(work)
}

func (s *Store) FindWorkByID(_ context.Context, id string) (domain.MeasuredWork, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.state.works[id]
	return w, ok
}

func (s *Store) ListWorks(_ context.Context) []domain.MeasuredWork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MeasuredWork, 0, len(s.state.workOrder))
	for _, id := range s.state.workOrder {
		out = append(out, s.state.works[id])
	}
	return out
}

func (s *Store) ListWorksByModelID(_ context.Context, costModelID string) []domain.MeasuredWork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worksByModelLocked(costModelID)
}

// UpdateWork merges patch into the stored work. The line total is
// recomputed from the merged values whenever quantity or rate is patched;
// a merge whose total falls outside domain.AmountInRange is dropped and
// reported as false.
func (s *Store) UpdateWork(_ context.Context, id string, patch domain.WorkPatch) (domain.MeasuredWork, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.works[id]
	if !ok {
		return domain.MeasuredWork{}, false
	}

	if patch.ElementCode != nil {
		w.ElementCode = *patch.ElementCode
	}
	if patch.ElementName != nil {
		w.ElementName = *patch.ElementName
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	if patch.Quantity != nil {
		w.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		w.Unit = *patch.Unit
	}
	if patch.UnitRate != nil {
		w.UnitRate = *patch.UnitRate
	}
	if patch.Notes != nil {
		w.Notes = *patch.Notes
	}
	if patch.TouchesCost() {
		w.TotalCost = domain.LineTotal(w.Quantity, w.UnitRate)
		if !domain.AmountInRange(w.TotalCost) {
			return domain.MeasuredWork{}, false
		}
	}
	w.UpdatedAt = s.clock.Now()

	s.state.works[id] = w
	return w, true
}

func (s *Store) DeleteWork(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.works[id]; !ok {
		return false
	}
	delete(s.state.works, id)
	s.state.workOrder = removeID(s.state.workOrder, id)
	return true
}

func (s *Store) DeleteWorksByModelID(_ context.Context, costModelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWorksByModelLocked(costModelID)
}

func (s *Store) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newState()
}

func (s *Store) Stats(_ context.Context) domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		Models: len(s.state.models),
		Works:  len(s.state.works),
	}
}

func (s *Store) insertModel(model domain.CostModel) domain.CostModel {
	now := s.clock.Now()
	model = model.Clone()
	model.ID = s.ids.NewID()
	model.CreatedAt = now
	model.UpdatedAt = now
	if model.Status == "" {
		model.Status = domain.StatusDraft
	}
	model.TotalCost = domain.Round2(model.TotalCost)

	s.state.models[model.ID] = model
	s.state.modelOrder = append(s.state.modelOrder, model.ID)
	return model
}

func (s *Store) insertWork(work domain.MeasuredWork) domain.MeasuredWork {
	now := s.clock.Now()
	work.ID = s.ids.NewID()
	work.TotalCost = domain.LineTotal(work.Quantity, work.UnitRate)
	work.CreatedAt = now
	work.UpdatedAt = now

	s.state.works[work.ID] = work
	s.state.workOrder = append(s.state.workOrder, work.ID)
	return work
}

func (s *Store) worksByModelLocked(costModelID string) []domain.MeasuredWork {
	out := make([]domain.MeasuredWork, 0)
	for _, id := range s.state.workOrder {
		if w := s.state.works[id]; w.CostModelID == costModelID {
			out = append(out, w)
		}
	}
	return out
}

func (s *Store) deleteModelLocked(id string) bool {
	if _, ok := s.state.models[id]; !ok {
		return false
	}
	delete(s.state.models, id)
	s.state.modelOrder = removeID(s.state.modelOrder, id)
	return true
}

func (s *Store) deleteWorksByModelLocked(costModelID string) int {
	kept := s.state.workOrder[:0]
	removed := 0
	for _, id := range s.state.workOrder {
		if s.state.works[id].CostModelID == costModelID {
			delete(s.state.works, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.state.workOrder = kept
	return removed
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
