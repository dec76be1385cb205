package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// JSONB maps to a PostgreSQL JSONB column (plain TEXT under sqlite).
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// ComponentType values form a closed enumeration, mirrored by the storage
// check constraint on components.type and by the typereg package.
const (
	ComponentTypeCPU            = "cpu"
	ComponentTypeGPU            = "gpu"
	ComponentTypeMemory         = "memory"
	ComponentTypeStorage        = "storage"
	ComponentTypePowerSupply    = "power_supply"
	ComponentTypeMotherboard    = "motherboard"
	ComponentTypeCase           = "case"
	ComponentTypeCooler         = "cooler"
	ComponentTypeMemoryCard     = "memory_card"
	ComponentTypeOpticalDrive   = "optical_drive"
	ComponentTypeSoundCard      = "sound_card"
	ComponentTypeCables         = "cables"
	ComponentTypeNetworkAdapter = "network_adapter"
	ComponentTypeNetworkCard    = "network_card"
)

// Component is a purchasable hardware part in the catalog.
type Component struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	Name      string          `json:"name" gorm:"size:128;not null"`
	Brand     string          `json:"brand" gorm:"size:64;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL  string          `json:"image_url" gorm:"size:512"`
	Type      string          `json:"type" gorm:"size:20;not null;index;check:type IN ('cpu','gpu','memory','storage','power_supply','motherboard','case','cooler','memory_card','optical_drive','sound_card','cables','network_adapter','network_card')"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Spec        *ComponentSpec   `json:"spec,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
	GroupValues []SpecGroupValue `json:"group_values,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
}

func (Component) TableName() string {
	return "components"
}

// ComponentSpec is the type-specific attribute row, one-to-one with its
// component. Attrs holds the required scalar fields of the component's type,
// validated against the type registry before insertion.
type ComponentSpec struct {
	ComponentID string    `json:"component_id" gorm:"primaryKey;size:32"`
	Attrs       JSONB     `json:"attrs" gorm:"type:jsonb;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ComponentSpec) TableName() string {
	return "component_specs"
}

// SpecGroupValue is one value of a multi-valued attribute group
// (e.g. a case's supported motherboard form factors).
type SpecGroupValue struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	ComponentID string `json:"component_id" gorm:"size:32;not null;index"`
	GroupKey    string `json:"group_key" gorm:"size:40;not null"`
	Value       string `json:"value" gorm:"size:64;not null"`
}

func (SpecGroupValue) TableName() string {
	return "spec_group_values"
}
