package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/models"
)

func TestGenerateSessionCode(t *testing.T) {
	codePattern := regexp.MustCompile(`^[A-Z0-9]{1,8}-[A-Z0-9]{6}$`)

	code := generateSessionCode("Cafe Central 24/7")
	assert.Regexp(t, codePattern, code)
	assert.Equal(t, "CAFECENT", code[:8], "prefix keeps only the first 8 alphanumerics")

	// a name with no usable characters still yields a valid code
	assert.Regexp(t, codePattern, generateSessionCode("!!! ***"))

	// two shops with the same name must never collide
	assert.NotEqual(t, generateSessionCode("Cafe"), generateSessionCode("Cafe"))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, validatePassword("admin", "short"))
	assert.Error(t, validatePassword("admin", "ADMIN"), "password equal to the username is rejected even case-insensitively")
	assert.NoError(t, validatePassword("admin", "correct horse battery"))
}

func TestDateParam(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/?date=2024-03-01", nil)
	date, ok := dateParam(w, r)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	date, ok = dateParam(w, r)
	require.True(t, ok)
	assert.Equal(t, time.Now().Format(attendance.DateLayout), date, "missing date defaults to today")

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/?date=03%2F01%2F2024", nil)
	_, ok = dateParam(w, r)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLegacyFilterFromQuery(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet,
		"/?reg_id=emp001&occupation=Barista&regular_wage=15.5&start_date=2024-03-01&end_date=2024-03-31", nil)

	filter, ok := legacyFilterFromQuery(w, r)
	require.True(t, ok)
	assert.Equal(t, "EMP001", filter.RegID, "reg_id filter is normalized like stored IDs")
	assert.Equal(t, "Barista", filter.Occupation)
	require.NotNil(t, filter.RegularWage)
	assert.Equal(t, 15.5, *filter.RegularWage)
	assert.Equal(t, "2024-03-01", filter.StartDate)
	assert.Equal(t, "2024-03-31", filter.EndDate)
}

func TestLegacyFilterFromQueryRejectsUnknownParam(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/?occupation=Barista&ssn=123", nil)

	_, ok := legacyFilterFromQuery(w, r)
	assert.False(t, ok, "parameters outside the allow-list never reach the SQL layer")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLegacyFilterFromQueryRejectsBadValues(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/?regular_wage=lots", nil)
	_, ok := legacyFilterFromQuery(w, r)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/?date=yesterday", nil)
	_, ok = legacyFilterFromQuery(w, r)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleAdmin, models.RoleTeacher)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	requestAs := func(user *models.User) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusNoContent, requestAs(&models.User{Role: models.RoleAdmin}).Code)
	assert.Equal(t, http.StatusNoContent, requestAs(&models.User{Role: models.RoleTeacher}).Code)
	assert.Equal(t, http.StatusForbidden, requestAs(&models.User{Role: models.RoleStudent}).Code)
	assert.Equal(t, http.StatusInternalServerError, requestAs(nil).Code,
		"a missing context user means the middleware chain is miswired")
}

func TestScopedRegID(t *testing.T) {
	resolve := func(user *models.User, query string) (string, bool, int) {
		r := httptest.NewRequest(http.MethodGet, "/"+query, nil)
		w := httptest.NewRecorder()
		regID, ok := scopedRegID(w, r, user)
		return regID, ok, w.Code
	}

	// admins and teachers read whichever employee they ask for
	regID, ok, _ := resolve(&models.User{Role: models.RoleAdmin}, "?reg_id=emp001")
	assert.True(t, ok)
	assert.Equal(t, "EMP001", regID)

	_, ok, code := resolve(&models.User{Role: models.RoleTeacher}, "")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, code)

	// students are pinned to their own reg ID regardless of the query
	regID, ok, _ = resolve(&models.User{Role: models.RoleStudent, RegID: "EMP002"}, "?reg_id=EMP001")
	assert.True(t, ok)
	assert.Equal(t, "EMP002", regID)

	_, ok, code = resolve(&models.User{Role: models.RoleStudent}, "?reg_id=EMP001")
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, code)
}
