package models

import "time"

type LogisticStatus string

const (
	LogisticPending  LogisticStatus = "PENDING"
	LogisticLocating LogisticStatus = "LOCATING"
	LogisticAcquired LogisticStatus = "ACQUIRED"
)

func (s LogisticStatus) Valid() bool {
	return s == LogisticPending || s == LogisticLocating || s == LogisticAcquired
}

// Toggled is the status a checklist tap moves an item to.
func (s LogisticStatus) Toggled() LogisticStatus {
	if s == LogisticPending {
		return LogisticAcquired
	}
	return LogisticPending
}

type ItemKind string

const (
	ItemTravel ItemKind = "TRAVEL"
	ItemSupply ItemKind = "SUPPLY"
)

func (k ItemKind) Valid() bool {
	return k == ItemTravel || k == ItemSupply
}

type SectorPriority string

const (
	SectorStable   SectorPriority = "STABLE"
	SectorHigh     SectorPriority = "HIGH"
	SectorCritical SectorPriority = "CRITICAL"
)

// Sector is a read-only store location that logistics items are filed under.
type Sector struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Priority SectorPriority `json:"priority"`
}

// DefaultSectors are seeded by the migrations.
var DefaultSectors = []Sector{
	{ID: "sec-01", Name: "GROCERIES_HQ", Priority: SectorStable},
	{ID: "sec-02", Name: "HARDWARE_DEPOT", Priority: SectorHigh},
	{ID: "sec-03", Name: "PHARMACY_LAB", Priority: SectorCritical},
}

type LogisticsItem struct {
	ID        string         `json:"id"`
	UserID    string         `json:"-"`
	Name      string         `json:"name"`
	Qty       int            `json:"qty"`
	Status    LogisticStatus `json:"status"`
	SectorID  string         `json:"sector_id"`
	Category  string         `json:"category,omitempty"`
	Kind      ItemKind       `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type NewLogisticsItem struct {
	Name     string   `json:"name" validate:"required,min=1,max=120"`
	Qty      int      `json:"qty" validate:"omitempty,gte=1,lte=9999"`
	SectorID string   `json:"sector_id" validate:"required"`
	Category string   `json:"category" validate:"max=60"`
	Kind     ItemKind `json:"kind" validate:"omitempty,itemkind"`
}

type LogisticsItemPatch struct {
	Name     *string         `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Qty      *int            `json:"qty,omitempty" validate:"omitempty,gte=1,lte=9999"`
	Status   *LogisticStatus `json:"status,omitempty" validate:"omitempty,logisticstatus"`
	SectorID *string         `json:"sector_id,omitempty" validate:"omitempty,min=1"`
	Category *string         `json:"category,omitempty" validate:"omitempty,max=60"`
	Kind     *ItemKind       `json:"kind,omitempty" validate:"omitempty,itemkind"`
}

func (p LogisticsItemPatch) Apply(it LogisticsItem) LogisticsItem {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Qty != nil {
		it.Qty = *p.Qty
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.SectorID != nil {
		it.SectorID = *p.SectorID
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Kind != nil {
		it.Kind = *p.Kind
	}
	return it
}

func (p LogisticsItemPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Qty != nil {
		cols["qty"] = *p.Qty
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.SectorID != nil {
		cols["sector_id"] = *p.SectorID
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Kind != nil {
		cols["kind"] = string(*p.Kind)
	}
	return cols
}

// ManifestItem is a piece of carried gear on the travel manifest.
type ManifestItem struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	Name           string    `json:"name"`
	WeightKg       float64   `json:"weight_kg"`
	IsDeManifested bool      `json:"is_de_manifested"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type NewManifestItem struct {
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	WeightKg float64 `json:"weight_kg" validate:"gte=0,lte=1000"`
}

type ManifestItemPatch struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	WeightKg       *float64 `json:"weight_kg,omitempty" validate:"omitempty,gte=0,lte=1000"`
	IsDeManifested *bool    `json:"is_de_manifested,omitempty"`
}

func (p ManifestItemPatch) Apply(m ManifestItem) ManifestItem {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.WeightKg != nil {
		m.WeightKg = *p.WeightKg
	}
	if p.IsDeManifested != nil {
		m.IsDeManifested = *p.IsDeManifested
	}
	return m
}

func (p ManifestItemPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.WeightKg != nil {
		cols["weight_kg"] = *p.WeightKg
	}
	if p.IsDeManifested != nil {
		cols["is_de_manifested"] = *p.IsDeManifested
	}
	return cols
}
