// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

// RegisterValidations installs the simulator's custom binding
// validators on gin's validator engine. Call once before serving (and
// in handler test setup).
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// "sector" accepts only the three known infrastructure sectors.
	_ = v.RegisterValidation("sector", func(fl validator.FieldLevel) bool {
		return datatypes.Sector(fl.Field().String()).IsValid()
	})
	// "riskaction" accepts only the closed action vocabulary.
	_ = v.RegisterValidation("riskaction", func(fl validator.FieldLevel) bool {
		return datatypes.Action(fl.Field().String()).IsValid()
	})
}
