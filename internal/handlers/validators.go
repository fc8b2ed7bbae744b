package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("expensecategory", func(fl validator.FieldLevel) bool {
			return domain.ValidCategory(domain.Category(fl.Field().String()))
		})
	}
}
