package models

import "time"

const EquipmentTable = "elp_equipment"

// The six fixed categories. Stored as plain strings; validated at the edge.
var EquipmentCategories = []string{
	"Sports Equipment",
	"Lab Equipment",
	"Cameras/Electronics",
	"Musical Instruments",
	"Project Materials",
	"Other",
}

const (
	ConditionExcellent = "Excellent"
	ConditionGood      = "Good"
	ConditionFair      = "Fair"
	ConditionPoor      = "Poor"
)

// Equipment holds the total owned quantity and the currently loanable
// count. Available moves only through the lifecycle transitions
// (approve/return) or an explicit quantity edit; 0 <= available <= quantity.
type Equipment struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Category    string `gorm:"size:50;index;not null" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	Condition   string `gorm:"size:20;not null;default:'Good'" json:"condition"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	Available   int    `gorm:"not null" json:"available"`
	ImageURL    string `gorm:"size:500" json:"imageUrl,omitempty"`
	AddedBy     string `gorm:"type:uuid;index;not null" json:"addedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }

func ValidCategory(c string) bool {
	for _, k := range EquipmentCategories {
		if k == c {
			return true
		}
	}
	return false
}

func ValidCondition(c string) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
