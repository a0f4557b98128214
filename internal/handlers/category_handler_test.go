package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

type mockCategoryService struct {
	createCategoryFn    func(userID uint, description string) (*models.Category, error)
	getUserCategoriesFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	updateCategoryFn    func(userID uint, key, description string) (*models.Category, error)
	deleteCategoryFn    func(userID uint, key string) error
}

func (m *mockCategoryService) CreateCategory(userID uint, description string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, description)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByKey(userID uint, key string) (*models.Category, error) {
	return &models.Category{Base: models.Base{Key: key}}, nil
}

func (m *mockCategoryService) UpdateCategory(userID uint, key, description string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, key, description)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID uint, key string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, key)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectAuth(1, testUserKey))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetCategories)
	auth.GET("/categories/:key", handler.GetCategory)
	auth.PATCH("/categories/:key", handler.UpdateCategory)
	auth.DELETE("/categories/:key", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		categorySvc := &mockCategoryService{
			createCategoryFn: func(userID uint, description string) (*models.Category, error) {
				return &models.Category{Base: models.Base{Key: "cat-key"}, Description: description}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(categorySvc))

		rec := doRequest(r, "POST", "/categories", `{"description":"Groceries"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		category := result["category"].(map[string]interface{})
		if category["description"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", category["description"])
		}
	})

	t.Run("returns 422 on a duplicate description", func(t *testing.T) {
		categorySvc := &mockCategoryService{
			createCategoryFn: func(uint, string) (*models.Category, error) {
				verr := &apperrors.ValidationError{}
				verr.Add("description", apperrors.KindTaken, "has already been taken")
				return nil, verr
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(categorySvc))

		rec := doRequest(r, "POST", "/categories", `{"description":"Groceries"}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertFieldErrors(t, parseJSON(t, rec), "description")
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("passes pagination through", func(t *testing.T) {
		var gotPage pagination.PageRequest
		categorySvc := &mockCategoryService{
			getUserCategoriesFn: func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				gotPage = page
				resp := pagination.NewPageResponse([]models.Category{{Description: "Groceries"}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(categorySvc))

		rec := doRequest(r, "GET", "/categories?page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) {
			t.Errorf("expected total_items 1, got %v", result["total_items"])
		}
	})

	t.Run("rejects an out-of-range page size", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "GET", "/categories?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		categorySvc := &mockCategoryService{
			updateCategoryFn: func(userID uint, key, description string) (*models.Category, error) {
				return &models.Category{Base: models.Base{Key: key}, Description: description}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(categorySvc))

		rec := doRequest(r, "PATCH", "/categories/cat-key", `{"description":"Food"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 404 for an unknown category", func(t *testing.T) {
		categorySvc := &mockCategoryService{
			updateCategoryFn: func(uint, string, string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(categorySvc))

		rec := doRequest(r, "PATCH", "/categories/nope", `{"description":"Food"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 204", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "DELETE", "/categories/cat-key", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}
