package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a pharmacy stock record.
type InventoryItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	GenericName  string          `json:"genericName,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ReorderLevel decimal.Decimal `json:"reorderLevel,omitempty"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty"`
}

// NeedsReorder reports whether stock has fallen to the reorder level.
func (i InventoryItem) NeedsReorder() bool {
	return i.Quantity.LessThanOrEqual(i.ReorderLevel)
}

// DispenseRequest records a medicine being dispensed against an encounter.
type DispenseRequest struct {
	ItemID      string          `json:"itemId"`
	EncounterID string          `json:"encounterId,omitempty"`
	PatientID   string          `json:"patientId"`
	Quantity    decimal.Decimal `json:"quantity"`
	Remarks     string          `json:"remarks,omitempty"`
}

// ChangeLogEntry is one record of the administrative version-control feed.
type ChangeLogEntry struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Summary   string    `json:"summary,omitempty"`
}
