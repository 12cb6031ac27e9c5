package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jobreport/internal/auth"
	"jobreport/internal/logger"
	"jobreport/internal/models"
)

func setupServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
	t.Setenv("BCRYPT_COST", "4")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Department{}, &models.Service{}, &models.Branch{}, &models.Subdivision{},
		&models.Report{}, &models.Archive{},
		&models.Profile{}, &models.RefreshToken{}, &models.Notice{}, &models.Syslog{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	srv := httptest.NewServer(NewRouter(db, logger.New()))
	t.Cleanup(srv.Close)
	return srv, db
}

func seedProfile(t *testing.T, db *gorm.DB, email, role string) models.Profile {
	t.Helper()
	hash, err := auth.HashPassword("password1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	p := models.Profile{
		Email:       email,
		Password:    hash,
		Fullname:    "Test " + role,
		IsActivated: true,
		Role:        role,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func tokenFor(t *testing.T, p models.Profile) string {
	t.Helper()
	tok, err := auth.SignAccess(p.ID, p.Email, p.Fullname, p.IsActivated, p.Role)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(res.Body)
	return res, out.Bytes()
}

func decode(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
}

func TestAuthFlow(t *testing.T) {
	srv, db := setupServer(t)

	res, raw := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]any{
		"email":    "new@example.com",
		"password": "password1",
		"fullname": "N. Newcomer",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("signup: %d %s", res.StatusCode, raw)
	}

	// fresh accounts are deactivated and cannot sign in yet
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/signin", "", map[string]any{
		"email":    "new@example.com",
		"password": "password1",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("deactivated signin: %d", res.StatusCode)
	}
	if err := db.Model(&models.Profile{}).
		Where("email = ?", "new@example.com").
		Update("is_activated", true).Error; err != nil {
		t.Fatalf("activate: %v", err)
	}

	res, raw = doJSON(t, http.MethodPost, srv.URL+"/api/auth/signin", "", map[string]any{
		"email":    "new@example.com",
		"password": "password1",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signin: %d %s", res.StatusCode, raw)
	}
	var signed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, raw, &signed)
	if signed.AccessToken == "" || signed.RefreshToken == "" {
		t.Fatalf("token pair missing: %s", raw)
	}

	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/me", signed.AccessToken, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me: %d %s", res.StatusCode, raw)
	}
	var me models.Profile
	decode(t, raw, &me)
	if me.Email != "new@example.com" || me.Role != models.RoleUser {
		t.Fatalf("unexpected profile: %+v", me)
	}

	res, raw = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]any{
		"refreshToken": signed.RefreshToken,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("refresh: %d %s", res.StatusCode, raw)
	}
	var rotated struct {
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, raw, &rotated)

	// the old refresh token is invalidated by rotation
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]any{
		"refreshToken": signed.RefreshToken,
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale refresh accepted: %d", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/signout", signed.AccessToken, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signout: %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]any{
		"refreshToken": rotated.RefreshToken,
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after signout accepted: %d", res.StatusCode)
	}
}

func TestBadCredentialsAndMissingToken(t *testing.T) {
	srv, db := setupServer(t)
	seedProfile(t, db, "u@example.com", models.RoleUser)

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signin", "", map[string]any{
		"email":    "u@example.com",
		"password": "wrongpass",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/departments", "", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous access: %d", res.StatusCode)
	}
}

func TestRoleEnforcement(t *testing.T) {
	srv, db := setupServer(t)
	user := tokenFor(t, seedProfile(t, db, "u@example.com", models.RoleUser))
	mod := tokenFor(t, seedProfile(t, db, "m@example.com", models.RoleModerator))

	body := map[string]any{"name": "Ops", "description": "d", "phone": "p", "manager": "m"}
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/departments", user, body)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("user created a department: %d", res.StatusCode)
	}
	res, raw := doJSON(t, http.MethodPost, srv.URL+"/api/departments", mod, body)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("moderator blocked: %d %s", res.StatusCode, raw)
	}

	// syslogs are administrator-only
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/syslogs", mod, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("moderator read syslogs: %d", res.StatusCode)
	}
}

func TestReportLifecycle(t *testing.T) {
	srv, db := setupServer(t)
	mod := tokenFor(t, seedProfile(t, db, "m@example.com", models.RoleModerator))
	admin := tokenFor(t, seedProfile(t, db, "a@example.com", models.RoleAdministrator))

	post := func(token, path string, body any) []byte {
		t.Helper()
		res, raw := doJSON(t, http.MethodPost, srv.URL+path, token, body)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("POST %s: %d %s", path, res.StatusCode, raw)
		}
		return raw
	}

	var svc models.Service
	decode(t, post(mod, "/api/services", map[string]any{"code": "S1", "name": "Repair", "price": "100"}), &svc)
	var sub models.Subdivision
	decode(t, post(mod, "/api/subdivisions", map[string]any{"name": "North", "description": "nd"}), &sub)
	var branch models.Branch
	decode(t, post(mod, "/api/branches", map[string]any{
		"name": "Central", "description": "cd", "subdivisionIds": []string{sub.ID},
	}), &branch)
	var dep models.Department
	decode(t, post(mod, "/api/departments", map[string]any{
		"name": "Maintenance", "description": "d", "phone": "p", "manager": "m",
		"serviceIds": []string{svc.ID},
	}), &dep)

	period := map[string]any{"monthOfReport": 3, "yearOfReport": 2024}
	var rows []models.Report
	decode(t, post(admin, "/api/reports/"+dep.ID, period), &rows)
	if len(rows) != 1 {
		t.Fatalf("grid size %d, want 1", len(rows))
	}

	res, raw := doJSON(t, http.MethodPut, srv.URL+"/api/reports/"+rows[0].ID, mod,
		map[string]any{"changesJobCount": 5})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update count: %d %s", res.StatusCode, raw)
	}
	var updated models.Report
	decode(t, raw, &updated)
	if updated.CurrentJobCount != 5 {
		t.Fatalf("current = %d, want 5", updated.CurrentJobCount)
	}

	// completing the period freezes its rows
	res, raw = doJSON(t, http.MethodPut, srv.URL+"/api/reports/status/"+dep.ID, mod,
		map[string]any{"monthOfReport": 3, "yearOfReport": 2024, "completed": true})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set status: %d %s", res.StatusCode, raw)
	}
	res, _ = doJSON(t, http.MethodPut, srv.URL+"/api/reports/"+rows[0].ID, mod,
		map[string]any{"changesJobCount": 9})
	if res.StatusCode != http.StatusLocked {
		t.Fatalf("completed row editable: %d", res.StatusCode)
	}

	res, raw = doJSON(t, http.MethodGet,
		srv.URL+"/api/sheets/services?monthOfReport=3&yearOfReport=2024", mod, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("service sheet: %d %s", res.StatusCode, raw)
	}
	var sheet []struct {
		Code          string `json:"code"`
		TotalJobCount int    `json:"totalJobCount"`
		TotalPrice    string `json:"totalPrice"`
	}
	decode(t, raw, &sheet)
	if len(sheet) != 1 || sheet[0].TotalJobCount != 5 || sheet[0].TotalPrice != "500" {
		t.Fatalf("unexpected sheet: %+v", sheet)
	}

	post(mod, "/api/reports/archive", period)
	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/archives", mod, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("archives: %d %s", res.StatusCode, raw)
	}
	var periods []map[string]int
	decode(t, raw, &periods)
	if len(periods) != 1 || periods[0]["monthOfReport"] != 3 {
		t.Fatalf("unexpected periods: %+v", periods)
	}

	// rollover to april carries the closing count forward
	post(mod, "/api/reports/report", map[string]any{"monthOfReport": 4, "yearOfReport": 2024})
	res, raw = doJSON(t, http.MethodGet,
		srv.URL+"/api/reports/"+dep.ID+"?monthOfReport=4&yearOfReport=2024", mod, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("april rows: %d %s", res.StatusCode, raw)
	}
	var april []models.Report
	decode(t, raw, &april)
	if len(april) != 1 {
		t.Fatalf("april grid size %d, want 1", len(april))
	}
	if april[0].PreviousJobCount != 5 || april[0].CurrentJobCount != 5 || april[0].ChangesJobCount != 0 {
		t.Fatalf("carry-forward broken: %+v", april[0])
	}
	if april[0].Completed {
		t.Fatal("new period opened completed")
	}
}

func TestArchivesSurviveDepartmentDeletion(t *testing.T) {
	srv, db := setupServer(t)
	mod := tokenFor(t, seedProfile(t, db, "m@example.com", models.RoleModerator))
	admin := tokenFor(t, seedProfile(t, db, "a@example.com", models.RoleAdministrator))

	post := func(token, path string, body any) []byte {
		t.Helper()
		res, raw := doJSON(t, http.MethodPost, srv.URL+path, token, body)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("POST %s: %d %s", path, res.StatusCode, raw)
		}
		return raw
	}

	var svc models.Service
	decode(t, post(mod, "/api/services", map[string]any{"code": "S1", "name": "Repair", "price": "100"}), &svc)
	var sub models.Subdivision
	decode(t, post(mod, "/api/subdivisions", map[string]any{"name": "North", "description": "nd"}), &sub)
	var branch models.Branch
	decode(t, post(mod, "/api/branches", map[string]any{
		"name": "Central", "description": "cd", "subdivisionIds": []string{sub.ID},
	}), &branch)
	var dep models.Department
	decode(t, post(mod, "/api/departments", map[string]any{
		"name": "Maintenance", "description": "d", "phone": "p", "manager": "m",
		"serviceIds": []string{svc.ID},
	}), &dep)

	period := map[string]any{"monthOfReport": 3, "yearOfReport": 2024}
	post(admin, "/api/reports/"+dep.ID, period)
	post(mod, "/api/reports/archive", period)

	res, raw := doJSON(t, http.MethodDelete, srv.URL+"/api/departments/"+dep.ID, mod, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete department: %d %s", res.StatusCode, raw)
	}

	// report rows are cascaded, archived snapshots are not
	var reports int64
	db.Model(&models.Report{}).Where("department_id = ?", dep.ID).Count(&reports)
	if reports != 0 {
		t.Fatalf("report rows survived department deletion: %d", reports)
	}
	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/archives/"+dep.ID, mod, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("archives: %d %s", res.StatusCode, raw)
	}
	var archived []models.Archive
	decode(t, raw, &archived)
	if len(archived) != 1 {
		t.Fatalf("got %d archived rows after department deletion, want 1", len(archived))
	}
	if archived[0].DepartmentName != "Maintenance" {
		t.Fatalf("snapshot lost department details: %+v", archived[0])
	}

	// bulk-delete by an administrator is still the only way to clear them
	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/archives/"+dep.ID, mod, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("moderator cleared archives: %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/archives/"+dep.ID, admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("admin bulk-delete: %d", res.StatusCode)
	}
}

func TestNoticeFanout(t *testing.T) {
	srv, db := setupServer(t)
	admin := tokenFor(t, seedProfile(t, db, "a@example.com", models.RoleAdministrator))
	user := seedProfile(t, db, "u@example.com", models.RoleUser)
	userToken := tokenFor(t, user)

	inactive := seedProfile(t, db, "i@example.com", models.RoleUser)
	if err := db.Model(&inactive).Update("is_activated", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	res, raw := doJSON(t, http.MethodPost, srv.URL+"/api/notices", admin, map[string]any{
		"profileIds": []string{user.ID, inactive.ID},
		"title":      "Maintenance window",
		"text":       "Reports close friday",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create notices: %d %s", res.StatusCode, raw)
	}
	var created []models.Notice
	decode(t, raw, &created)
	// the deactivated profile is skipped
	if len(created) != 1 || created[0].ProfileID != user.ID {
		t.Fatalf("unexpected fanout: %+v", created)
	}

	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/notices", userToken, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list notices: %d %s", res.StatusCode, raw)
	}
	var mine []models.Notice
	decode(t, raw, &mine)
	if len(mine) != 1 || mine[0].Title != "Maintenance window" {
		t.Fatalf("unexpected notices: %+v", mine)
	}

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/notices/"+mine[0].ID, userToken, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete notice: %d", res.StatusCode)
	}
}

func TestDuplicateReferenceNameConflicts(t *testing.T) {
	srv, db := setupServer(t)
	mod := tokenFor(t, seedProfile(t, db, "m@example.com", models.RoleModerator))

	body := map[string]any{"code": "S1", "name": "Repair", "price": "10"}
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/services", mod, body)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("first create: %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/services", mod, body)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate accepted: %d", res.StatusCode)
	}
}

func TestPaginationBounds(t *testing.T) {
	srv, db := setupServer(t)
	admin := tokenFor(t, seedProfile(t, db, "a@example.com", models.RoleAdministrator))

	for i := 0; i < 60; i++ {
		p := models.Profile{
			Email:       fmt.Sprintf("p%02d@example.com", i),
			Password:    "x",
			Fullname:    fmt.Sprintf("P %02d", i),
			IsActivated: true,
			Role:        models.RoleUser,
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var page struct {
		Docs      []models.Profile `json:"docs"`
		TotalDocs int64            `json:"totalDocs"`
		Limit     int              `json:"limit"`
		Offset    int              `json:"offset"`
	}

	res, raw := doJSON(t, http.MethodGet, srv.URL+"/api/profiles", admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s", res.StatusCode, raw)
	}
	decode(t, raw, &page)
	if len(page.Docs) != 5 || page.TotalDocs != 61 {
		t.Fatalf("default page wrong: docs=%d total=%d", len(page.Docs), page.TotalDocs)
	}

	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/profiles?limit=500", admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s", res.StatusCode, raw)
	}
	decode(t, raw, &page)
	if len(page.Docs) != 50 || page.Limit != 50 {
		t.Fatalf("limit not clamped: docs=%d limit=%d", len(page.Docs), page.Limit)
	}

	res, raw = doJSON(t, http.MethodGet,
		srv.URL+`/api/profiles?limit=10&filters={"email":"p0"}`, admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("filtered list: %d %s", res.StatusCode, raw)
	}
	decode(t, raw, &page)
	if page.TotalDocs != 10 {
		t.Fatalf("filter total = %d, want 10", page.TotalDocs)
	}

	res, raw = doJSON(t, http.MethodGet, srv.URL+"/api/profiles?limit=0", admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s", res.StatusCode, raw)
	}
	decode(t, raw, &page)
	if len(page.Docs) != 0 || page.TotalDocs != 61 {
		t.Fatalf("limit=0 must return no docs: docs=%d total=%d", len(page.Docs), page.TotalDocs)
	}
}

func TestSysloggerRecordsRequests(t *testing.T) {
	srv, db := setupServer(t)
	user := seedProfile(t, db, "u@example.com", models.RoleUser)
	token := tokenFor(t, user)

	if res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/services", token, nil); res.StatusCode != http.StatusOK {
		t.Fatalf("request failed: %d", res.StatusCode)
	}
	if res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/services", "", nil); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous request: %d", res.StatusCode)
	}

	var logs []models.Syslog
	if err := db.Order("id").Find(&logs).Error; err != nil {
		t.Fatalf("load syslogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d syslog rows, want 2", len(logs))
	}
	if logs[0].Profile != user.Fullname || logs[0].Status != http.StatusOK {
		t.Fatalf("authenticated entry wrong: %+v", logs[0])
	}
	if logs[1].Profile != "anonymous" || logs[1].Status != http.StatusUnauthorized {
		t.Fatalf("anonymous entry wrong: %+v", logs[1])
	}
}

func TestLargeRequestBodyReachesHandler(t *testing.T) {
	srv, db := setupServer(t)
	mod := tokenFor(t, seedProfile(t, db, "m@example.com", models.RoleModerator))

	// larger than the syslog capture cap
	name := strings.Repeat("n", 80<<10)
	res, raw := doJSON(t, http.MethodPost, srv.URL+"/api/services", mod, map[string]any{
		"code": "S1", "name": name, "price": "10",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, raw[:min(len(raw), 200)])
	}
	var svc models.Service
	decode(t, raw, &svc)
	if len(svc.Name) != len(name) {
		t.Fatalf("body truncated before the handler: got %d bytes, want %d", len(svc.Name), len(name))
	}

	// the audit row keeps only a capped copy, never a broken JSON prefix
	var entry models.Syslog
	if err := db.First(&entry, "method = ?", "POST").Error; err != nil {
		t.Fatalf("load syslog: %v", err)
	}
	if len(entry.Body) > maxCapturedBody {
		t.Fatalf("stored body exceeds cap: %d", len(entry.Body))
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := setupServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", res.StatusCode)
	}
}
