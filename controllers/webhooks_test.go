package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"closetlyapi/dbhelper"
	"closetlyapi/models"
	"closetlyapi/test"

	"github.com/stretchr/testify/assert"
)

func TestWebhookInitialPurchase(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	data := map[string]interface{}{
		"event": map[string]interface{}{
			"app_id":               "app70fd013e95",
			"app_user_id":          fmt.Sprint(user.ID),
			"country_code":         "US",
			"environment":          "SANDBOX",
			"event_timestamp_ms":   1715405366686,
			"expiration_at_ms":     1715412566686,
			"id":                   "791C890E-B8AD-46C9-8290-13EAF5F14C9F",
			"original_app_user_id": "7f680253-003b-4073-b4f3-5d1df7cd9a67",
			"period_type":          "NORMAL",
			"product_id":           "closetly_pro_monthly",
			"purchased_at_ms":      1715405366686,
			"store":                "PLAY_STORE",
			"type":                 "INITIAL_PURCHASE",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", fmt.Sprintf("Bearer %s", "fake"), data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedCompany models.Company
	db.First(&updatedCompany, user.Memberships[0].CompanyID)
	assert.Equal(t, models.Pro, updatedCompany.Subscription)

	var updatedUser models.UserAccount
	db.First(&updatedUser, user.ID)
	if assert.NotNil(t, updatedUser.Subscription) {
		assert.Equal(t, string(models.Pro), *updatedUser.Subscription)
	}
	assert.NotNil(t, updatedUser.ExpirationDate)
}

func TestWebhookRejectsBadToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)

	data := map[string]interface{}{
		"event": map[string]interface{}{
			"app_user_id": "1",
			"type":        "INITIAL_PURCHASE",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer wrong", data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
}
