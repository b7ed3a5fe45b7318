// Package validator provides small composable validation rules.
//
//	err := validator.Apply(
//		validator.RequiredString("title", req.Title),
//		validator.RequiredSlice("recipients", req.Recipients),
//		validator.When(req.Type != "", validator.InListString("type", req.Type, types)),
//	)
//
// Apply returns ValidationErrors, which HTTP handlers render field by field.
package validator
