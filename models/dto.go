package models

type ClothingUrlRequestIn struct {
	ClothingId uint   `json:"clothing_id"`
	FileName   string `json:"file_name"`
}

type ClothingFilesUploadRequestIn struct {
	Clothes []ClothingUrlRequestIn `json:"clothes"`
}

type ClothingFileUploadRequestOut struct {
	ClothingId uint   `json:"clothing_id"`
	FileName   string `json:"file_name"`
	UploadUrl  string `json:"upload_url"`
}

type ClothingFilesUploadRequestOut struct {
	Clothes []ClothingFileUploadRequestOut `json:"clothes"`
}

type CompanyOverviewOut struct {
	Name                     string          `json:"name"`
	ImageUrl                 *string         `json:"image_url"`
	Subscription             string          `json:"subscription"`
	OwnerID                  uint            `json:"owner_id"`
	Currency                 string          `json:"currency"`
	Language                 string          `json:"language"`
	TodayCreatedClothesCount *int64          `json:"today_created_clothes_count"`
	TotalClothesCount        *int64          `json:"total_clothes_count"`
	TotalGenerationCount     *int64          `json:"total_generation_count"`
	DefaultDailyClothesLimit int             `json:"default_daily_clothes_limit"`
	DefaultTotalClothesLimit int             `json:"default_total_clothes_limit"`
	Members                  []MemberInfoOut `json:"members"`
	LLMModel                 *int32          `json:"llm_model"`
	FullAdminAccess          bool            `json:"full_admin_access"`
}

type CompanyUpdateIn struct {
	Name     *string `json:"name"`
	Language *string `json:"language"`
	LLMModel *int32  `json:"llm_model"`
}

type MemberAddIn struct {
	Email string `json:"email" validate:"required"`
	Role  Role   `json:"role" validate:"required"`
}
