package domain

// Ingredient — справочный ингредиент. Пара (name, measurement_unit) не уникальна
// на уровне схемы: дедупликацией занимается загрузчик (cmd/loadingredients).
type Ingredient struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null"`
}

func (Ingredient) TableName() string { return "ingredients" }
