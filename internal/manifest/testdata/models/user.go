package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string
	Nickname string `gorm:"size:32"`
	Email    string `gorm:"column:email_address" validate:"required,email,max=255"`
	Status   string `validate:"oneof=active banned"`
	Bio      string `gorm:"type:text"`
	Handle   string `gorm:"type:varchar(40)"`
	Code     string `validate:"min=3"`
	Type     string
	Secret   string `gorm:"-"`
	Pets     []Pet  `gorm:"polymorphic:Owner"`
	Profile  Profile
	LastSeen *time.Time
	internal string
}

type Pet struct {
	ID        uint
	Name      string `validate:"len=8"`
	OwnerID   uint
	OwnerType string
}

func (Pet) TableName() string { return "animals" }

type Profile struct {
	Timestamps
	ID     uint
	UserID uint
	User   User
	URL    string `gorm:"size:255;not null"`
}
