package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"closetlyapi/dbhelper"
	"closetlyapi/models"
	"closetlyapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosetOverview(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID
	test.FakeClothing(db, user, "top", "Overview Top")

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/%v/overview", companyID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var overview models.CompanyOverviewOut
	err := json.Unmarshal(rec.Body.Bytes(), &overview)
	require.NoError(t, err)
	assert.Equal(t, "My Closet", overview.Name)
	assert.Equal(t, "free", overview.Subscription)
	require.NotNil(t, overview.TotalClothesCount)
	assert.Equal(t, int64(1), *overview.TotalClothesCount)
	// LLM config is hidden without the admin flag
	assert.Nil(t, overview.LLMModel)
}

func TestClosetUpdate(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	payload := models.CompanyUpdateIn{Name: stringPtr("Fall Wardrobe"), Language: stringPtr("fr")}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/update", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fromDb models.Company
	db.First(&fromDb, companyID)
	assert.Equal(t, "Fall Wardrobe", fromDb.Name)
	assert.Equal(t, "fr", fromDb.Language)
}

func TestClosetUpdateLLMModelNeedsAdminAccess(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	model := int32(2)
	payload := models.CompanyUpdateIn{LLMModel: &model}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/update", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	db.Model(&models.Company{}).Where("id = ?", companyID).Update("full_admin_access", true)
	req = test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/update", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec = httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fromDb models.Company
	db.First(&fromDb, companyID)
	require.NotNil(t, fromDb.EnforcedLLMModel)
	assert.Equal(t, int32(2), *fromDb.EnforcedLLMModel)
}

func TestClosetInviteMember(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	payload := models.MemberAddIn{Email: "partner@example.com", Role: models.MEMBER}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/members", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "invite_code")

	var invited models.UserAccount
	r := db.Where("email = ?", "partner@example.com").First(&invited)
	require.NoError(t, r.Error)
	assert.Equal(t, "INVITATION_PENDING", invited.Status)

	var membership models.UserCompanyRole
	r = db.Where("user_account_id = ? and company_id = ?", invited.ID, companyID).First(&membership)
	require.NoError(t, r.Error)
	assert.Equal(t, models.MEMBER, membership.Role)
	assert.False(t, membership.Active)
	assert.NotNil(t, membership.InviteCode)
}

func TestClosetInviteMemberTwice(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	// owner is already a member of their own closet
	payload := models.MemberAddIn{Email: user.Email, Role: models.MEMBER}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/members", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "already invited")
}

func TestClosetInviteMemberBadEmail(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	payload := models.MemberAddIn{Email: "not-an-email", Role: models.MEMBER}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/members", companyID), strconv.FormatUint(uint64(user.ID), 10), payload)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestStartTrial(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	companyID := user.Memberships[0].CompanyID

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/start-trial", companyID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fromDb models.Company
	db.First(&fromDb, companyID)
	assert.Equal(t, models.Trial, fromDb.Subscription)
	require.NotNil(t, fromDb.TrialDays)
	assert.Equal(t, uint(14), *fromDb.TrialDays)
	assert.NotNil(t, fromDb.TrialStartedDate)

	// second attempt is rejected, the trial already ran
	req = test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/%v/start-trial", companyID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec = httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}
