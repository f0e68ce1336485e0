package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"closetlyapi/models"
	"closetlyapi/services"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func UIntPointer(i uint) *uint {
	return &i
}

func NewRefString(data string) *string {
	return &data
}

func Contains(items []string, lookFor string) bool {

	for i := 0; i < len(items); i++ {

		if items[i] == lookFor {
			return true
		}
	}
	return false
}

func FakeUser(db *gorm.DB, company *models.Company) *models.UserAccount {
	user := &models.UserAccount{
		Name:      "OurName",
		Email:     "email@example.com",
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)

	if company == nil {

		company = &models.Company{
			Name:         "My Closet",
			OwnerID:      user.ID,
			Subscription: models.Free,
		}
		db.Create(&company)
	}
	var user_membership = &models.UserCompanyRole{
		CompanyID:        company.ID,
		UserAccountID:    user.ID,
		Active:           true,
		InviteAcceptedAt: Int64Pointer(time.Now().UnixMilli()),
		Role:             "OWNER",
	}
	db.Save(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	db.Save(&user_membership)
	db.Preload("Memberships.Company").First(&user, user.ID)

	return user
}

func FakeUserV2(db *gorm.DB, company *models.Company, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	if company == nil {

		company = &models.Company{
			Name:    "My Closet",
			OwnerID: user.ID,
		}
		db.Create(&company)
	}
	var user_membership = &models.UserCompanyRole{
		CompanyID:     company.ID,
		UserAccountID: user.ID,
		Active:        true,
		Role:          "OWNER",
	}
	db.Save(&user)
	db.Save(&user_membership)
	db.Preload(clause.Associations).First(&user, user.ID)
	return user
}

// FakeClothing creates one analyzed garment already sitting in the closet.
func FakeClothing(db *gorm.DB, owner *models.UserAccount, category string, name string) *models.Clothing {
	clothing := &models.Clothing{
		Name:             name,
		Category:         category,
		OwnerID:          owner.ID,
		CompanyID:        owner.Memberships[0].CompanyID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "completed",
		ImageURL:         NewRefString(fmt.Sprintf("clothes/%s.png", name)),
		Colors:           pq.StringArray{"black"},
		Styles:           pq.StringArray{"casual"},
		Formality:        1,
		WarmthLevel:      2,
	}
	db.Create(&clothing)
	return clothing
}

// FakeReadyWardrobe fills the closet just past the readiness threshold.
func FakeReadyWardrobe(db *gorm.DB, owner *models.UserAccount) []*models.Clothing {
	wardrobe := []*models.Clothing{}
	for i := 0; i < 5; i++ {
		wardrobe = append(wardrobe, FakeClothing(db, owner, "top", fmt.Sprintf("Top %d", i)))
	}
	for i := 0; i < 3; i++ {
		wardrobe = append(wardrobe, FakeClothing(db, owner, "bottom", fmt.Sprintf("Bottom %d", i)))
	}
	for i := 0; i < 2; i++ {
		wardrobe = append(wardrobe, FakeClothing(db, owner, "shoes", fmt.Sprintf("Shoes %d", i)))
	}
	return wardrobe
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2024-05-11T06:50:56Z",
		"request_date_ms": 1715410256322,
		"subscriber": {
		  "entitlements": {
			"pro": {
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "product_identifier": "prostandard",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2024-05-11T06:49:05Z"
			}
		  },
		  "first_seen": "2024-05-07T12:41:57Z",
		  "last_seen": "2024-05-10T20:43:21Z",
		  "management_url": "https://play.google.com/store/account/subscriptions",
		  "non_subscriptions": {},
		  "original_app_user_id": "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f",
		  "original_application_version": null,
		  "original_purchase_date": null,
		  "other_purchases": {},
		  "subscriptions": {
			"prostandard": {
			  "auto_resume_date": null,
			  "billing_issues_detected_at": null,
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "is_sandbox": true,
			  "original_purchase_date": "2024-05-11T06:49:05Z",
			  "period_type": "normal",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2024-05-11T06:49:05Z",
			  "refunded_at": null,
			  "store": "play_store",
			  "store_transaction_id": "GPA.3308-7668-0800-70257",
			  "unsubscribe_detected_at": null
			}
		  }
		}
	  }
	  `

	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	// Simulate a successful upload
	return url, 204, nil
}

func (awsService AWSProviderMock) ObjectExists(ctx context.Context, bucketName, fileKey string) (bool, error) {
	return true, nil
}

type URLCacheMock struct{}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", objectKey), nil
}

// WeatherServiceMock returns fixed mild conditions, or fails when Err is set.
type WeatherServiceMock struct {
	Report *services.WeatherReport
	Err    error
}

func (m WeatherServiceMock) GetCurrentWeather(ctx context.Context, latitude, longitude float64) (*services.WeatherReport, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Report != nil {
		return m.Report, nil
	}
	return &services.WeatherReport{
		TemperatureF:     68,
		FeelsLikeF:       66,
		PrecipitationPct: 10,
		HumidityPct:      40,
		WindMph:          5,
	}, nil
}

// MockLLMProcessor returns canned garment analysis and outfit suggestions.
// Override fields let a test steer the JSON the handler parses.
type MockLLMProcessor struct {
	ClothingResponse string
	SuggestResponse  string
}

func (m MockLLMProcessor) ProcessClothing(filePath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	response := m.ClothingResponse
	if response == "" {
		response = "```json\n" + `{
		"name": "Navy Oxford Shirt",
		"description": "Classic navy oxford with button-down collar",
		"category": "top",
		"colors": ["navy", "white"],
		"styles": ["preppy", "casual"],
		"formality": 2,
		"warmth_level": 2,
		"is_waterproof": false,
		"occasion_scores": {"work": 8, "casual": 7, "date": 6}
		}` + "\n```"
	}
	return &services.LLMResponse{
		Response:           response,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m MockLLMProcessor) ProcessAvatarTask(personAvatarPath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{
		Response:        "ok",
		Images:          [][]byte{[]byte("fake-avatar-png")},
		InputTokenCount: 10,
		TotalTokenCount: 11,
	}, nil
}

func (m MockLLMProcessor) GenerateTryOn(personAvatarPath string, filePaths []string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{
		Response:        "ok",
		Images:          [][]byte{[]byte("fake-tryon-png")},
		InputTokenCount: 10,
		TotalTokenCount: 11,
	}, nil
}

func (m MockLLMProcessor) SuggestOutfit(closetSummary string, occasion string, weatherSummary string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	response := m.SuggestResponse
	if response == "" {
		response = "```json\n" + `{
		"top_id": 1,
		"bottom_id": 2,
		"shoes_id": 3,
		"rationale": "Clean casual combination for the day ahead"
		}` + "\n```"
	}
	return &services.LLMResponse{
		Response:           response,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}
