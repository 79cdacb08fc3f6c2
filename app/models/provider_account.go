package models

import "time"

// ProviderAccount links an OAuth identity (google, ...) to a staff user
type ProviderAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index" json:"user_id"`
	Provider       string     `gorm:"index:provider_uid,unique;type:varchar(50)" json:"provider"`
	ProviderUserID string     `gorm:"index:provider_uid,unique;type:varchar(191)" json:"provider_user_id"`
	Email          string     `gorm:"type:varchar(200);default:''" json:"email"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SetTokens replaces the stored provider tokens; a zero expiry clears ExpiresAt.
func (pa *ProviderAccount) SetTokens(accessToken, refreshToken string, expiresAt time.Time) {
	pa.AccessToken = accessToken
	pa.RefreshToken = refreshToken
	if expiresAt.IsZero() {
		pa.ExpiresAt = nil
		return
	}
	t := expiresAt
	pa.ExpiresAt = &t
}
