package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bcnelson/addrscope/internal/domain"
)

// ETaggable is an interface for resources that can generate ETags.
type ETaggable interface {
	GetID() string
	GetUpdatedAt() time.Time
}

// GenerateETag generates an ETag for a resource based on its ID and updated_at timestamp.
// Format: "<resource_type>-<id>-<updated_at_unix_nano>"
func GenerateETag(resourceType string, res ETaggable) string {
	return fmt.Sprintf(`"%s-%s-%d"`, resourceType, res.GetID(), res.GetUpdatedAt().UnixNano())
}

// SetETagHeader sets the ETag header on the response.
func SetETagHeader(w http.ResponseWriter, resourceType string, res ETaggable) {
	w.Header().Set("ETag", GenerateETag(resourceType, res))
}

// CheckIfMatch checks if the If-Match header matches the current ETag.
// Returns true if:
//   - No If-Match header is present (ETag checking is optional)
//   - The If-Match header matches the current ETag
//
// Returns false if the If-Match header is present but doesn't match.
func CheckIfMatch(r *http.Request, resourceType string, res ETaggable) bool {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" {
		// No If-Match header, allow the request (ETag is optional)
		return true
	}
	return ifMatch == GenerateETag(resourceType, res)
}

// RespondPreconditionFailed writes a 412 Precondition Failed response.
func RespondPreconditionFailed(w http.ResponseWriter, resourceType string, res ETaggable) {
	respondStandardError(w, http.StatusPreconditionFailed, domain.ErrCodePreconditionFailed,
		"resource has been modified", "", map[string]any{
			"currentETag": GenerateETag(resourceType, res),
		})
}

const reportResource = "report"

// Report ETag helpers
func SetReportETag(w http.ResponseWriter, report *domain.Report) {
	SetETagHeader(w, reportResource, report)
}

func CheckReportIfMatch(r *http.Request, report *domain.Report) bool {
	return CheckIfMatch(r, reportResource, report)
}
