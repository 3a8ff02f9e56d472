package domain

import "regexp"

// ColorCodePattern — HEX-код цвета тега: #RRGGBB или #RGB.
var ColorCodePattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type Tag struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Color string `json:"color" gorm:"size:7;not null;uniqueIndex"`
	Slug  string `json:"slug" gorm:"size:200;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

// ValidColor проверяет HEX-код цвета.
func (t Tag) ValidColor() bool {
	return ColorCodePattern.MatchString(t.Color)
}
