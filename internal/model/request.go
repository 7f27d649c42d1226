package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is returned when user input cannot be turned into a Request.
var ErrInvalidRequest = errors.New("invalid request")

// Request identifies a package to download and, optionally, the version
// it is pinned to. An empty Version means "latest".
type Request struct {
	// PackageID is the application id, e.g. "org.example.app".
	PackageID string `validate:"required,package_id"`

	// Version is the pinned version string. Empty when unpinned.
	Version string `validate:"omitempty,excludesall=/\\"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("package_id", validatePackageID)
	return v
}

// validatePackageID accepts dot separated segments of letters, digits and
// underscores. Single-segment ids are allowed; the catalog decides whether
// they exist.
func validatePackageID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return false
	}
	for _, seg := range strings.Split(id, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			default:
				return false
			}
		}
	}
	return true
}

// Pinned reports whether the request names a specific version.
func (r Request) Pinned() bool {
	return r.Version != ""
}

// String returns "id" or "id@version".
func (r Request) String() string {
	if r.Pinned() {
		return r.PackageID + "@" + r.Version
	}
	return r.PackageID
}

// FileName returns the name the artifact is stored under:
// "{id}.apk" when unpinned, "{id}@{version}.apk" when pinned.
func (r Request) FileName() string {
	return r.String() + ".apk"
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRequest, r.String(), err)
	}
	return nil
}

// ParseRequest parses a single "id" or "id@version" token.
func ParseRequest(token string) (Request, error) {
	token = strings.TrimSpace(token)
	id, version, _ := strings.Cut(token, "@")

	req := Request{
		PackageID: strings.TrimSpace(id),
		Version:   strings.TrimSpace(version),
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ParseRequests parses a comma-separated list of "id[@version]" tokens.
// Empty tokens are skipped. Order is preserved and duplicates are kept;
// deduplicating input is the caller's job.
func ParseRequests(list string) ([]Request, error) {
	var reqs []Request
	for _, token := range strings.Split(list, ",") {
		if strings.TrimSpace(token) == "" {
			continue
		}
		req, err := ParseRequest(token)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// ReadRequests reads one request per CSV record from r. The first field is
// "id" or "id@version"; an optional second field gives the version. Blank
// lines and lines starting with '#' are ignored.
func ReadRequests(r io.Reader) ([]Request, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var reqs []Request
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return reqs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading request list: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		req, err := ParseRequest(record[0])
		if err != nil {
			return nil, err
		}
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			if req.Pinned() {
				return nil, fmt.Errorf("%w %q: version given twice", ErrInvalidRequest, req.String())
			}
			req.Version = strings.TrimSpace(record[1])
			if err := req.Validate(); err != nil {
				return nil, err
			}
		}
		reqs = append(reqs, req)
	}
}
