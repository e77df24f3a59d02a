package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/bitfantasy/barstock/internal/inventory/testutil"
	"github.com/bitfantasy/barstock/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCountHandlerTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()
	testutil.LoadTemplates(router)

	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, nil, testutil.TestConfig(), zap.NewNop())
	handler := NewCountHandler(svc.Count)

	pages := router.Group("/", middleware.SessionAuth(testutil.JWTSecret))
	locations := pages.Group("/locations/:id", middleware.LocationScope())
	locations.POST("/counts", handler.Save)
	locations.GET("/counts/export", handler.Export)

	return db, router
}

func TestCountSave(t *testing.T) {
	db, router := setupCountHandlerTest(t)
	bar, _ := seedStockFixture(t, db)
	token := testutil.StaffToken()

	w := testutil.DoFormRequest(router, "POST", "/locations/"+bar.ID+"/counts",
		url.Values{"counted_by": {"小王"}, "notes": {"周末盘点"}}, token)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/locations/"+bar.ID {
		t.Errorf("Expected redirect back to location, got %s", loc)
	}

	// 带成功提示的一次性 Cookie
	flashed := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "barstock_flash" && cookie.Value != "" {
			flashed = true
		}
	}
	if !flashed {
		t.Error("Expected flash cookie after save")
	}

	var total int64
	db.Table("stock_counts").Count(&total)
	if total != 1 {
		t.Errorf("Expected 1 stock count, got %d", total)
	}
	var items int64
	db.Table("stock_count_items").Count(&items)
	if items != 1 {
		t.Errorf("Expected 1 count item, got %d", items)
	}
}

func TestCountSaveUnknownLocation(t *testing.T) {
	_, router := setupCountHandlerTest(t)
	token := testutil.StaffToken()

	w := testutil.DoFormRequest(router, "POST", "/locations/no-such-id/counts",
		url.Values{"counted_by": {"小王"}}, token)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d: %s", w.Code, w.Body.String())
	}
	// 失败也回位置页，提示放在 Flash 里
	flashed := ""
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "barstock_flash" {
			flashed = cookie.Value
		}
	}
	if !strings.Contains(flashed, "error") {
		t.Errorf("Expected error flash, got %q", flashed)
	}
}

func TestCountExport(t *testing.T) {
	db, router := setupCountHandlerTest(t)
	bar, _ := seedStockFixture(t, db)
	token := testutil.StaffToken()

	testutil.DoFormRequest(router, "POST", "/locations/"+bar.ID+"/counts",
		url.Values{"counted_by": {"小王"}}, token)

	w := testutil.DoFormRequest(router, "GET", "/locations/"+bar.ID+"/counts/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Expected xlsx content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got %s", cd)
	}
	if w.Body.Len() == 0 {
		t.Error("Expected non-empty export body")
	}
}
