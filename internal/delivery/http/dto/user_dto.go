package dto

import "cncsignals/internal/domain"

// UserOutput represents the redacted identity in API responses
type UserOutput struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	IsVerified      bool                 `json:"isVerified"`
	IsVip           bool                 `json:"isVip"`
	FreeCreditsUsed int                  `json:"freeCreditsUsed"`
	LastResetDate   string               `json:"lastResetDate"`
	Stats           *domain.TradingStats `json:"stats,omitempty"`
	Avatar          string               `json:"avatar,omitempty"`
	Bio             string               `json:"bio,omitempty"`
}

// NewUserOutput maps a domain identity onto the API shape.
func NewUserOutput(u domain.User) *UserOutput {
	return &UserOutput{
		ID:              u.ID.String(),
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		IsVerified:      u.IsVerified,
		IsVip:           u.IsVip,
		FreeCreditsUsed: u.FreeCreditsUsed,
		LastResetDate:   u.LastResetDate,
		Stats:           u.Stats,
		Avatar:          u.Avatar,
		Bio:             u.Bio,
	}
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}

// AvatarRequest carries the avatar description prompt
type AvatarRequest struct {
	Description string `json:"description" validate:"required"`
}

// AvatarResponse carries the generated avatar as a PNG data URL
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// UsageOutput reports today's quota consumption
type UsageOutput struct {
	CurrentUsage int  `json:"currentUsage"`
	Limit        int  `json:"limit"`
	IsExhausted  bool `json:"isExhausted"`
	IsVip        bool `json:"isVip"`
}
