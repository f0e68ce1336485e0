package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
}

type SignUpIn struct {
	ProfileIn
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

type ProfileIn struct {
	Name      string `json:"name" validate:"required"`
	Closet    string `json:"closet" validate:"required"`
	UTMSource string `json:"utm_source" validate:"required"`
}

type RefreshIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UserInfoOut struct {
	Id                uint   `json:"id,omitempty"`
	Name              string `json:"name"`
	CompanyName       string `json:"company_name"`
	Email             string `json:"email"`
	Status            string `json:"status"`
	AvatarUrl         string `json:"avatar_url"`
	FullBodyAvatarSet bool   `json:"full_body_avatar_set"`
}

type MemberInfoOut struct {
	UserInfo   UserInfoOut `json:"user_info"`
	Active     bool        `json:"active"`
	Role       Role        `json:"role"`
	InviteCode *string     `json:"invite_code"`
}

type CompanyInfoOut struct {
	Id               uint         `json:"id"`
	Name             string       `json:"name"`
	OwnerId          uint         `json:"owner_id"`
	Active           bool         `json:"active"`
	Subscription     Subscription `json:"subscription"`
	TrialStartedDate *int64       `json:"trial_started_date"`
	TrialDays        *uint        `json:"trial_days"`
	FullAdminAccess  bool         `json:"full_admin_access"`
}

type CompanyInfoRoleOut struct {
	CompanyInfoOut
	Role string `json:"role"`
}

type UserMeInfoOut struct {
	Name                                 string               `json:"name"`
	Email                                string               `json:"email"`
	Status                               string               `json:"status"`
	AvatarURL                            string               `json:"avatar_url"`
	MyClosets                            []CompanyInfoRoleOut `json:"my_closets"`
	FullBodyAvatarUrl                    *string              `json:"full_body_avatar_url"`
	FullBodyAvatarSet                    bool                 `json:"full_body_avatar_set"`
	FullBodyAvatarStatus                 string               `json:"full_body_avatar_status"`
	FullBodyAvatarProcessingErrorMessage *string              `json:"full_body_avatar_processing_error_message"`
	ReceiveNotifications                 bool                 `json:"receive_notifications"`
	DailyOutfitAlertsEnabled             bool                 `json:"daily_outfit_alerts_enabled"`
	FavoriteColors                       []string             `json:"favorite_colors"`
	StylePreferences                     []StylePreference    `json:"style_preferences"`
}
