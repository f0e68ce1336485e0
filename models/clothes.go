package models

import "github.com/lib/pq"

type Clothing struct {
	JsonModel
	Name                string      `json:"name"`
	Description         *string     `gorm:"type:text" json:"description"`
	Category            string      `json:"category"` // top, bottom, shoes, outerwear, accessory
	Owner               UserAccount `json:"-"`
	OwnerID             uint        `json:"-"`
	CompanyID           uint        `json:"-"`
	Company             Company     `json:"company"`
	Status              string      `json:"status"`            // temporary, in_closet
	ImageStatus         string      `json:"image_status"`      // draft, uploaded
	ProcessingStatus    string      `json:"processing_status"` // pending, generating, completed, failed
	ProcessRetryTimes   int         `json:"process_retry_times"`
	ProcessErrorMessage *string     `json:"process_error_message"`
	ImageURL            *string     `json:"image_url"`

	// filled by the vision analysis task, consumed by the recommendation engine
	Colors    pq.StringArray `gorm:"type:text[]" json:"colors"`
	Styles    pq.StringArray `gorm:"type:text[]" json:"styles"`
	Formality int            `gorm:"default:0" json:"formality"` // 1 casual, 2 business casual, 3 formal, 0 means unscored

	// per-occasion suitability, "occasion:score" pairs on a 0..10 scale
	OccasionScores pq.StringArray `gorm:"type:text[]" json:"occasion_scores"`

	WarmthLevel  int  `gorm:"default:0" json:"warmth_level"` // 1..5, 0 means unscored
	IsWaterproof bool `gorm:"default:false" json:"is_waterproof"`

	LastWornAt *int64 `json:"last_worn_at"`
	WearCount  int    `gorm:"default:0" json:"wear_count"`
	IsFavorite bool   `gorm:"default:false" json:"is_favorite"`
}

// OutfitRecommendation is a persisted suggestion produced either on demand or
// by the daily scheduled job. Item columns snapshot the closet at generation
// time; clothes deleted later keep the row meaningful through the score fields.
type OutfitRecommendation struct {
	JsonModel
	Uid              string      `gorm:"index" json:"uid"`
	UserAccountID    uint        `json:"-"`
	UserAccount      UserAccount `json:"-"`
	CompanyID        uint        `json:"-"`
	Company          Company     `json:"-"`
	TopClothingID    *uint       `json:"top_clothing_id"`
	TopClothing      *Clothing   `json:"top_clothing"`
	BottomClothingID *uint       `json:"bottom_clothing_id"`
	BottomClothing   *Clothing   `json:"bottom_clothing"`
	ShoesClothingID  *uint       `json:"shoes_clothing_id"`
	ShoesClothing    *Clothing   `json:"shoes_clothing"`
	OuterwearID      *uint       `json:"outerwear_id"`
	Outerwear        *Clothing   `json:"outerwear"`
	AccessoryID      *uint       `json:"accessory_id"`
	Accessory        *Clothing   `json:"accessory"`

	Score          float64  `json:"score"`
	ColorScore     float64  `json:"color_score"`
	StyleScore     float64  `json:"style_score"`
	OccasionScore  *float64 `json:"occasion_score"`
	Occasion       *string  `json:"occasion"`
	WeatherSummary *string  `json:"weather_summary"`
	Source         string   `json:"source"` // on_demand, daily, ai
	GeneratedAt    int64    `json:"generated_at"`

	WornAt      *int64  `json:"worn_at"`
	UserRating  *int    `json:"user_rating"` // 1..5
	AIRationale *string `gorm:"type:text" json:"ai_rationale"`
}

type ClothingTryonGeneration struct {
	JsonModel
	TopClothingID    *uint       `json:"top_clothing_id"`
	TopClothing      *Clothing   `json:"top_clothing"`
	BottomClothingID *uint       `json:"bottom_clothing_id"`
	BottomClothing   *Clothing   `json:"bottom_clothing"`
	ShoesClothingID  *uint       `json:"shoes_clothing_id"`
	ShoesClothing    *Clothing   `json:"shoes_clothing"`
	AccessoryID      *uint       `json:"accessory_id"`
	Accessory        *Clothing   `json:"accessory"`
	UserAccountID    uint        `json:"-"`
	UserAccount      UserAccount `json:"user_account"`
	CompanyID        uint        `json:"company_id"`
	Company          Company     `json:"company"`

	// user avatar at the point of generation
	GeneratedWithAvatarURL string `json:"generated_with_avatar_url"`

	TryOnPreviewImageURL   *string  `json:"try_on_preview_image_url"`
	Status                 string   `json:"status"`   // pending, completed, failed
	Duration               *float64 `json:"duration"` // in seconds
	LLMTokenUsage          *int     `json:"llm_token_usage"`
	LLMModel               *string  `json:"llm_model"`
	LLMInputTokenCount     *int32   `json:"llm_input_token_usage"`
	LLMOutputTokenCount    *int32   `json:"llm_output_token_usage"`
	LLMTotalTokenCount     *int32   `json:"llm_total_token_usage"`
	LLMThoughtsTokenCount  *int32   `json:"llm_thoughts_token_count"`
	LLMThoughts            *string  `json:"llm_thoughts"`
	GenerationRetryTimes   int      `json:"generation_retry_times"`
	GenerationErrorMessage *string  `json:"generation_error_message"`
}
