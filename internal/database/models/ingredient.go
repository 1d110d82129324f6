package models

type Ingredient struct {
	Base
	Name   string `gorm:"not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i Ingredient) String() string {
	return i.Name
}
