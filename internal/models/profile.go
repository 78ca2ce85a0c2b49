package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// handlePattern is the format of a claimed handle: three uppercase letters
// followed by three digits.
var handlePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

// Profile is the durable presence record tied to one authenticated identity.
type Profile struct {
	ID               string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Handle           string      `gorm:"type:varchar(32);not null" json:"handle"`
	Email            string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	StatusLight      StatusLight `gorm:"type:varchar(10);default:'red'" json:"status_light"`
	StatusMessage    *string     `gorm:"type:text" json:"status_message"`
	LastStatusUpdate time.Time   `gorm:"index" json:"last_status_update"`
	HanglightActive  bool        `gorm:"default:false;not null" json:"hanglight_active"`
	WalletAddress    *string     `gorm:"type:varchar(255)" json:"wallet_address"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not bring one from the
// identity provider.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.StatusLight == "" {
		p.StatusLight = LightRed
	}
	return nil
}

// HasConformingHandle reports whether the handle satisfies the AAA999 format.
// Placeholder handles handed out at provisioning time do not.
func (p *Profile) HasConformingHandle() bool {
	return IsValidHandle(p.Handle)
}

// IsValidHandle reports whether handle matches the AAA999 format exactly.
func IsValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

func (Profile) TableName() string {
	return "profiles"
}
