package model

// Site represents a deployed static site reachable under a platform subdomain
type Site struct {
	BaseModel
	UserID    int    `gorm:"not null;index" json:"user_id"`
	Subdomain string `gorm:"type:varchar(63);uniqueIndex;not null" json:"subdomain"`
	URL       string `gorm:"type:varchar(255)" json:"url"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Site model
func (Site) TableName() string {
	return "sites"
}
