package domain

import "time"

// Status is the lifecycle state of a cost model.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusArchived Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusArchived:
		return true
	}
	return false
}

// Unit is the unit of measurement of a measured work.
type Unit string

const (
	UnitSquareMetre Unit = "m2"
	UnitCubicMetre  Unit = "m3"
	UnitMetre       Unit = "m"
	UnitNumber      Unit = "nr"
	UnitTonne       Unit = "t"
	UnitLumpSum     Unit = "ls"
)

func (u Unit) IsValid() bool {
	switch u {
	case UnitSquareMetre, UnitCubicMetre, UnitMetre, UnitNumber, UnitTonne, UnitLumpSum:
		return true
	}
	return false
}

// CostModel is a project estimate made up of measured works.
// TotalCost only changes when a recalculation is requested.
type CostModel struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"projectName"`
	ProjectRef  string    `json:"projectRef,omitempty"`
	Client      string    `json:"client,omitempty"`
	GIFA        *float64  `json:"gifa,omitempty"`
	TotalCost   float64   `json:"totalCost"`
	Status      Status    `json:"status"`
	PreparedBy  string    `json:"preparedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with m.
func (m CostModel) Clone() CostModel {
	if m.GIFA != nil {
		gifa := *m.GIFA
		m.GIFA = &gifa
	}
	return m
}

// MeasuredWork is one quantity x rate line item of a cost model.
type MeasuredWork struct {
	ID          string    `json:"id"`
	CostModelID string    `json:"costModelId"`
	ElementCode string    `json:"elementCode"`
	ElementName string    `json:"elementName"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Unit        Unit      `json:"unit"`
	UnitRate    float64   `json:"unitRate"`
	TotalCost   float64   `json:"totalCost"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkPatch carries the fields of a partial measured work update.
// Nil fields are left untouched.
type WorkPatch struct {
	ElementCode *string
	ElementName *string
	Description *string
	Quantity    *float64
	Unit        *Unit
	UnitRate    *float64
	Notes       *string
}

func (p WorkPatch) IsEmpty() bool {
	return p.ElementCode == nil &&
		p.ElementName == nil &&
		p.Description == nil &&
		p.Quantity == nil &&
		p.Unit == nil &&
		p.UnitRate == nil &&
		p.Notes == nil
}

// TouchesCost reports whether applying p changes the line total inputs.
func (p WorkPatch) TouchesCost() bool {
	return p.Quantity != nil || p.UnitRate != nil
}

// StoreStats summarises the in-memory collections.
type StoreStats struct {
	Models int `json:"models"`
	Works  int `json:"works"`
}
