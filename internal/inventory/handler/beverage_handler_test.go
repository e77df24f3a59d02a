package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/barstock/internal/inventory/testutil"
)

func TestUnitTypeLifecycle(t *testing.T) {
	_, router := setupAPITest(t)
	token := testutil.StaffToken()

	// 创建，倍数缺省为 1
	w := testutil.DoRequest(router, "POST", "/api/v1/unit-types",
		map[string]interface{}{"name": "BOTTLE"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	bottle := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if bottle["multiplier"].(float64) != 1 {
		t.Errorf("Expected default multiplier 1, got %v", bottle["multiplier"])
	}

	w2 := testutil.DoRequest(router, "POST", "/api/v1/unit-types",
		map[string]interface{}{"name": "TRAY_6", "multiplier": 6}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	tray := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	trayID := tray["id"].(string)

	// 被酒水引用的单位不能删
	w3 := testutil.DoRequest(router, "POST", "/api/v1/beverages",
		map[string]interface{}{
			"name":            "Pils",
			"unit_type_id":    trayID,
			"liters_per_unit": "0.5",
			"alarm_minimum":   2,
		}, token)
	if w3.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w3.Code, w3.Body.String())
	}

	w4 := testutil.DoRequest(router, "DELETE", "/api/v1/unit-types/"+trayID, nil, token)
	if w4.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w4.Code, w4.Body.String())
	}

	// 没被引用的可以删
	w5 := testutil.DoRequest(router, "DELETE", "/api/v1/unit-types/"+bottle["id"].(string), nil, token)
	if w5.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w5.Code, w5.Body.String())
	}
}

func TestBeverageCRUD(t *testing.T) {
	db, router := setupAPITest(t)
	token := testutil.StaffToken()

	bar := testutil.SeedLocation(t, db, "主吧台", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)

	// 创建并指派到位置
	w := testutil.DoRequest(router, "POST", "/api/v1/beverages",
		map[string]interface{}{
			"name":            "Pils",
			"unit_type_id":    tray.ID,
			"liters_per_unit": "0.5",
			"alarm_minimum":   2,
			"location_ids":    []string{bar.ID},
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	beverageID := data["id"].(string)
	if data["color"] != "rgb(54, 162, 235)" {
		t.Errorf("Expected default color, got %v", data["color"])
	}
	locations := data["locations"].([]interface{})
	if len(locations) != 1 {
		t.Errorf("Expected 1 assigned location, got %d", len(locations))
	}

	// 负升数被拒
	w2 := testutil.DoRequest(router, "POST", "/api/v1/beverages",
		map[string]interface{}{
			"name":            "Bad",
			"unit_type_id":    tray.ID,
			"liters_per_unit": "-1",
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w2.Code, w2.Body.String())
	}

	// 部分更新：只改告警阈值
	w3 := testutil.DoRequest(router, "PUT", "/api/v1/beverages/"+beverageID,
		map[string]interface{}{"alarm_minimum": 5}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	updated := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if updated["alarm_minimum"].(float64) != 5 {
		t.Errorf("Expected alarm_minimum 5, got %v", updated["alarm_minimum"])
	}
	if updated["name"] != "Pils" {
		t.Errorf("Expected name unchanged, got %v", updated["name"])
	}

	// 停用后不再出现在列表里
	w4 := testutil.DoRequest(router, "PUT", "/api/v1/beverages/"+beverageID,
		map[string]interface{}{"is_active": false}, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w4.Code, w4.Body.String())
	}
	w5 := testutil.DoRequest(router, "GET", "/api/v1/beverages", nil, token)
	items := testutil.ParseResponse(w5)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Errorf("Expected 0 active beverages, got %d", len(items))
	}
}
