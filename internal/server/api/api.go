// Package api holds the request and response shapes shared by the gRPC and
// HTTP transports, and their validation.
package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type RefreshSessionRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=4096"`
}

type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks req against its struct tags. The returned error lists the
// offending fields.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return errors.New("invalid fields: " + strings.Join(fields, ", "))
}
