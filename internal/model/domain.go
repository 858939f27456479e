package model

import "gorm.io/datatypes"

// Domain statuses mirror the edge provider's custom hostname status verbatim;
// anything beyond pending/active is stored as reported.
const (
	DomainStatusPending = "pending"
	DomainStatusActive  = "active"
)

// Domain represents a custom hostname attached to a site. Status and
// verification fields are a local cache of the provider state; they are only
// written from a successful provider response.
type Domain struct {
	BaseModel
	UserID             int    `gorm:"not null;index" json:"user_id"`
	SiteID             int    `gorm:"not null;index" json:"site_id"`
	Hostname           string `gorm:"type:varchar(255);uniqueIndex;not null" json:"hostname"`
	ProviderHostnameID string `gorm:"type:varchar(128);index" json:"-"` // edge provider custom hostname id, not exposed in API
	Status             string `gorm:"type:varchar(32);default:'pending'" json:"status"`
	VerificationMethod string `gorm:"type:varchar(16);default:'none'" json:"verification_method"`
	VerificationValue  string `gorm:"type:varchar(512)" json:"verification_value"`
	ValidationRecords  datatypes.JSON `gorm:"type:json" json:"-"` // raw provider validation records

	Site *Site `gorm:"foreignKey:SiteID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Domain model
func (Domain) TableName() string {
	return "domains"
}
