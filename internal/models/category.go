package models

// Category is a user-defined spending classification. Destroying a
// category destroys its budgets and detaches its payments.
type Category struct {
	Base
	UserID      uint   `gorm:"not null;index;uniqueIndex:idx_categories_user_description" json:"-"`
	Description string `gorm:"not null;uniqueIndex:idx_categories_user_description" json:"description"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Budgets  []Budget  `gorm:"foreignKey:CategoryID" json:"-"`
	Payments []Payment `gorm:"foreignKey:CategoryID" json:"-"`
}
