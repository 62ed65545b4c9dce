package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/models"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, internal(err, "list categories")
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "Category with ID %d not found.", id)
	}
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.InvalidInput("Category name is required.")
	}
	c := models.Category{Name: req.Name, Description: req.Description}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, internal(err, "create category")
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int, req models.CategoryRequest) error {
	if req.ID != 0 && req.ID != id {
		return apperr.InvalidInput("Category ID not matching.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperr.InvalidInput("Category name is required.")
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Name = req.Name
	c.Description = req.Description
	if err := s.db.WithContext(ctx).Model(c).Select("name", "description").Updates(c).Error; err != nil {
		return internal(err, "update category")
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id int) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(c).Error; err != nil {
		return internal(err, "delete category")
	}
	return nil
}
