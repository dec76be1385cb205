package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nkvtd/pc-forge/internal/middleware"
	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/service"
	"github.com/nkvtd/pc-forge/internal/testutil"
)

func setupBuildHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	testutil.SeedTestUser(t, db, "user-1", "User One", entity.UserRoleUser)
	testutil.SeedTestUser(t, db, "user-2", "User Two", entity.UserRoleUser)
	testutil.SeedTestUser(t, db, "admin-1", "Admin", entity.UserRoleAdmin)

	catalogSvc := service.NewCatalogService(repos.Component, nil)
	buildSvc := service.NewBuildService(repos.Build, repos.Component, repos.Social)
	socialSvc := service.NewSocialService(repos.Social, repos.Build)
	moderationSvc := service.NewModerationService(repos.Build, repos.Suggestion)

	catalogHandler := NewCatalogHandler(catalogSvc, service.NewImageService(nil, ""))
	buildHandler := NewBuildHandler(buildSvc)
	socialHandler := NewSocialHandler(socialSvc)
	moderationHandler := NewModerationHandler(moderationSvc)

	router := testutil.SetupRouter()
	router.GET("/api/v1/builds/:id", middleware.OptionalJWTAuth(testutil.JWTSecret), buildHandler.Get)

	api := testutil.AuthGroup(router, "/api/v1")
	builds := api.Group("/builds")
	builds.POST("", buildHandler.Create)
	builds.POST("/:id/components/:componentId", buildHandler.Attach)
	builds.DELETE("/:id/components/:componentId", buildHandler.Detach)
	builds.POST("/:id/submit", buildHandler.Submit)
	builds.DELETE("/:id", buildHandler.Delete)
	builds.POST("/:id/clone", buildHandler.Clone)
	builds.POST("/:id/favorite", socialHandler.ToggleFavorite)
	builds.PUT("/:id/rating", socialHandler.Rate)

	admin := api.Group("", middleware.RequireRole("admin"))
	admin.POST("/components", catalogHandler.Create)
	admin.PUT("/builds/:id/approval", moderationHandler.SetBuildApproval)

	return router
}

func createTestComponent(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/components", map[string]interface{}{
		"name":  "Ryzen 7 9700X",
		"brand": "AMD",
		"price": "359.00",
		"type":  "cpu",
		"attrs": map[string]interface{}{
			"socket": "AM5", "cores": 8, "threads": 16, "baseClock": "4.2 GHz", "tdp": "105 W",
		},
	}, testutil.AdminToken("admin-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func createTestBuild(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/builds", map[string]string{
		"name": "Test Build",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestBuildCreateRequiresAuth(t *testing.T) {
	router := setupBuildHandlerTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/builds", map[string]string{"name": "x"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}

func TestBuildAttachAndTotal(t *testing.T) {
	router := setupBuildHandlerTest(t)
	token := testutil.UserToken("user-1")

	componentID := createTestComponent(t, router)
	buildID := createTestBuild(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/builds/"+buildID+"/components/"+componentID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate attach is rejected.
	w = testutil.DoRequest(router, "POST", "/api/v1/builds/"+buildID+"/components/"+componentID, nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 on duplicate attach, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBuildForbiddenLooksLikeNotFound(t *testing.T) {
	router := setupBuildHandlerTest(t)

	componentID := createTestComponent(t, router)
	buildID := createTestBuild(t, router, testutil.UserToken("user-1"))

	// Another user touching the build gets the same 404 a missing build
	// would produce.
	w := testutil.DoRequest(router, "POST", "/api/v1/builds/"+buildID+"/components/"+componentID, nil, testutil.UserToken("user-2"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for non-owner, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/builds/missing/components/"+componentID, nil, testutil.UserToken("user-2"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for missing build, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBuildDetailsAnonymous(t *testing.T) {
	router := setupBuildHandlerTest(t)
	token := testutil.UserToken("user-1")

	buildID := createTestBuild(t, router, token)

	w := testutil.DoRequest(router, "GET", "/api/v1/builds/"+buildID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["is_favorite"] != false {
		t.Errorf("anonymous viewer has no favorite state, got %v", data["is_favorite"])
	}
}

func TestBuildApprovalRequiresAdmin(t *testing.T) {
	router := setupBuildHandlerTest(t)
	token := testutil.UserToken("user-1")

	buildID := createTestBuild(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/builds/"+buildID+"/submit", map[string]string{
		"name": "Done Build",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on submit, got %d: %s", w.Code, w.Body.String())
	}

	// Plain users cannot moderate.
	w = testutil.DoRequest(router, "PUT", "/api/v1/builds/"+buildID+"/approval", map[string]interface{}{
		"approved": true,
	}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/builds/"+buildID+"/approval", map[string]interface{}{
		"approved": true,
	}, testutil.AdminToken("admin-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSelfRatingRejectedOverHTTP(t *testing.T) {
	router := setupBuildHandlerTest(t)
	token := testutil.UserToken("user-1")

	buildID := createTestBuild(t, router, token)

	w := testutil.DoRequest(router, "PUT", "/api/v1/builds/"+buildID+"/rating", map[string]int{
		"value": 5,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for self-rating, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/builds/"+buildID+"/rating", map[string]int{
		"value": 5,
	}, testutil.UserToken("user-2"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for other viewer, got %d: %s", w.Code, w.Body.String())
	}
}
