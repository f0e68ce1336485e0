package models

import (
	"time"

	"github.com/lib/pq"
)

type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"INVITATION_PENDING", "STARTED_AUTH", "FINISHED_AUTH"
	Status              string            `json:"-"`
	GoogleID            string            `json:"-"`
	AppleID             string            `json:"-"`
	UTMSource           string            `json:"utm_source"`
	Platform            Platform          `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Memberships         []UserCompanyRole `gorm:"foreignKey:UserAccountID"`
	AdminInCompanys     []Company         `gorm:"foreignKey:OwnerID"`
	TelegramUsername    string            `json:"telegram_username"`
	Subscription        *string           `json:"subscription"`
	ExpirationDate      *time.Time        `json:"-"`
	ConfirmedDeleteDate *time.Time        `json:"-"`

	ReceiveNotifications bool `json:"receive_notifications"`
	// opt-in for the morning outfit suggestion push
	DailyOutfitAlertsEnabled bool `gorm:"default:false" json:"daily_outfit_alerts_enabled"`
	IsSuperadmin             bool `json:"is_superadmin"`
	// user app image/avatar
	AvatarURL string `json:"avatar_url"`

	FullBodyAvatarSet bool `json:"full_body_avatar_set"`
	// user full body avatar for try ons!
	UserFullBodyImageURL *string `json:"user_image_url"`
	// "", "processing", "completed", "failed"
	FullBodyAvatarStatus                 string  `json:"full_body_avatar_status"`
	FullBodyAvatarProcessingErrorMessage *string `json:"full_body_avatar_processing_error_message"`

	// colors the user told us they love, free-form, matched case-insensitively
	// against clothing colors by the recommendation engine
	FavoriteColors pq.StringArray `gorm:"type:text[]" json:"favorite_colors"`

	StylePreferences []StylePreference `gorm:"foreignKey:UserAccountID" json:"style_preferences"`
}

// StylePreference is one row of the user's style quiz: how much they like a
// given style on a 0-10 scale. Unset styles default to 5 inside the engine.
type StylePreference struct {
	JsonModel
	UserAccountID uint        `gorm:"index:idx_user_style,unique" json:"-"`
	UserAccount   UserAccount `json:"-"`
	Style         Style       `gorm:"index:idx_user_style,unique" json:"style"`
	Score         int         `json:"score"` // 0..10
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications     *bool `json:"receive_notifications"`
	DailyOutfitAlertsEnabled *bool `json:"daily_outfit_alerts_enabled"`
}

type UserCompanyRole struct {
	JsonModel
	UserAccountID    uint
	UserAccount      UserAccount `json:"user_account"`
	Active           bool        `gorm:"default:false" json:"-"`
	Role             Role        `sql:"type:ENUM('OWNER', 'ADMIN', 'MEMBER')" json:"role"`
	InviteCode       *string     `json:"-"`
	InviteAcceptedAt *int64      `json:"invite_accepted_at"`
	CompanyID        uint
	Company          Company `json:"company"`
}

// Company is the billing/sharing unit: a closet space that can be shared
// between several accounts (family plan).
type Company struct {
	JsonModel
	Name                       string            `json:"name"`
	ImageUrl                   *string           `json:"image_url"`
	Owner                      UserAccount       `json:"-"`
	OwnerID                    uint              `json:"-"`
	Subscription               Subscription      `json:"subscription"`
	TrialStartedDate           *int64            `json:"trial_started_date"`
	TrialDays                  *uint             `json:"trial_days"`
	Members                    []UserCompanyRole `json:"members"`
	Currency                   string            `json:"currency"`
	Language                   string            `json:"language"`
	Active                     bool              `json:"active"`
	EnforcedDailyClothingLimit *int32            `json:"enforced_daily_clothing_limit"`
	EnforcedDailyTryOnLimit    *int32            `json:"enforced_daily_try_on_limit"`
	EnforcedLLMModel           *int32            `json:"enforced_llm_model"`
	FullAdminAccess            bool              `json:"full_admin_access"`
}
