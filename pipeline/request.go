package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-kratos/scout"
)

// Request is the boundary input of a run.
type Request struct {
	Intent      Intent
	Model       scout.ModelConfig
	RegistryURL string
	// Debug raises the log level of this run only.
	Debug bool
}

// Validate reports missing or malformed input as a KindValidation *Error.
func (r Request) Validate() error {
	var errs inputErrors
	if r.Intent == nil {
		errs = append(errs, errors.New("prompt is required"))
	} else if err := r.Intent.validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(r.Model.APIKey) == "" {
		errs = append(errs, errors.New("API key is required"))
	}
	if err := r.Model.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(r.RegistryURL) == "" {
		errs = append(errs, errors.New("registry URL is required"))
	} else if u, err := url.Parse(r.RegistryURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("registry URL %q must be an absolute http(s) URL", r.RegistryURL))
	}
	if len(errs) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Op: "validate", Err: errs}
}
