package utils

import (
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// ValidateInput runs struct-tag validation on a New* input before any
// lifecycle processor sees it.
func ValidateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// ValidateResourceId checks that a row of T with the given id exists in the
// session's tenant schema. Returns ErrorRecordNotFound when missing.
func ValidateResourceId[T any](tx *gorm.DB, id any) error {
	var model T
	var count int64
	if err := tx.Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateUnique checks that no other row of T carries the same column value.
func ValidateUnique[T any](tx *gorm.DB, column string, value any, exceptId any) error {
	var model T
	var count int64
	dbCtx := tx.Model(&model).Where(column+" = ?", value)
	if exceptId != nil {
		dbCtx = dbCtx.Where("id <> ?", exceptId)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ConflictError{Message: column + " already exists"}
	}
	return nil
}
