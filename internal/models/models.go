package models

import (
	"time"
)

type UserAccount struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	LastName    string     `gorm:"not null"                 json:"last_name"`
	Gender      string     `gorm:"size:1"                   json:"gender"`
	DateOfBirth time.Time  `json:"date_of_birth"`
	AvatarURL   string     `json:"avatar_url"`
	Login       *UserLogin `gorm:"foreignKey:UserID"        json:"-"`
}

type UserLogin struct {
	UserID       uint       `gorm:"primaryKey"       json:"user_id"`
	Username     string     `gorm:"unique;not null"  json:"username"`
	PasswordSalt string     `gorm:"not null"         json:"-"`
	PasswordHash string     `gorm:"not null"         json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type PlantFamily struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type PlantOrder struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type PlantClass struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type PlantType struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type Climate struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type Region struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type SoilType struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type Usage struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null"   json:"name"`
}

type PlantImg struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PlantID string `gorm:"index;not null"           json:"plant_id"`
	URL     string `gorm:"not null"                 json:"url"`
	Caption string `json:"caption"`
}

type PlantInfo struct {
	ID             string      `gorm:"primaryKey"                 json:"id"`
	ScientificName string      `gorm:"not null"                   json:"scientific_name"`
	CommonName     string      `gorm:"not null"                   json:"common_name"`
	Description    string      `gorm:"not null"                   json:"description"`
	FamilyID       string      `gorm:"index;not null"             json:"family_id"`
	OrderID        string      `gorm:"index;not null"             json:"order_id"`
	ClassID        string      `gorm:"index;not null"             json:"class_id"`
	PlantTypeID    string      `gorm:"index;not null"             json:"plant_type_id"`
	Family         PlantFamily `gorm:"foreignKey:FamilyID"        json:"family,omitempty"`
	Order          PlantOrder  `gorm:"foreignKey:OrderID"         json:"order,omitempty"`
	Class          PlantClass  `gorm:"foreignKey:ClassID"         json:"class,omitempty"`
	PlantType      PlantType   `gorm:"foreignKey:PlantTypeID"     json:"plant_type,omitempty"`
	Images         []PlantImg  `gorm:"foreignKey:PlantID"         json:"images,omitempty"`
	Climates       []Climate   `gorm:"many2many:plant_climates"   json:"climates,omitempty"`
	Regions        []Region    `gorm:"many2many:plant_regions"    json:"regions,omitempty"`
	SoilTypes      []SoilType  `gorm:"many2many:plant_soil_types" json:"soil_types,omitempty"`
	Usages         []Usage     `gorm:"many2many:plant_usages"     json:"usages,omitempty"`
}
