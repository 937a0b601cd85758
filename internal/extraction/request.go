package extraction

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JakeFAU/linkdiff/internal/links"
)

const (
	msgURLRequired = "url is required"
	msgURLInvalid  = "a valid URL with scheme and host is required"
)

// Request is the input of one extraction. Unknown JSON keys are ignored.
type Request struct {
	URL     string                 `json:"url" validate:"required,abs_url"`
	Options *links.OptionOverrides `json:"options,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("abs_url", func(fl validator.FieldLevel) bool {
		return hasSchemeAndHost(fl.Field().String())
	})
	return v
}

func hasSchemeAndHost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// normalizeRequest trims the URL and validates it, returning the URL used as fetch
// target and history key.
func (s *Service) normalizeRequest(req Request) (string, error) {
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return "", inputInvalid(msgURLRequired)
		}
		return "", inputInvalid(msgURLInvalid)
	}
	return req.URL, nil
}
