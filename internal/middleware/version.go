package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"fakti/internal/common"

	"github.com/labstack/echo/v4"
)

// APIVersion describes one published version of the HTTP API.
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active" or "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
}

// VersionMiddleware tags responses with the API version they were served by
// and rejects paths naming an unknown version.
type VersionMiddleware struct {
	versions       map[string]APIVersion
	defaultVersion string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		versions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active"},
		},
		defaultVersion: "v1",
	}
}

// Deprecate marks version as deprecated until sunset.
func (vm *VersionMiddleware) Deprecate(version string, sunset time.Time) {
	vm.versions[version] = APIVersion{Version: version, Status: "deprecated", SunsetDate: &sunset}
}

// VersionHeader sets X-API-Version, plus deprecation headers when due.
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if ver, ok := vm.versions[version]; ok && ver.Status == "deprecated" && ver.SunsetDate != nil {
				h.Set("Deprecation", "true")
				h.Set("Sunset", ver.SunsetDate.UTC().Format(http.TimeFormat))
			}
			return next(c)
		}
	}
}

// APIVersionResolver stores the requested version under "api_version". A
// path like /v9/... naming an unsupported version gets a 404.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := versionFromPath(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if _, ok := vm.versions[version]; !ok {
				return c.JSON(http.StatusNotFound, common.CreateErrorResponse(
					"UNSUPPORTED_VERSION",
					common.Translate(c, "Unsupported API version"),
					map[string]string{"supported_versions": strings.Join(vm.SupportedVersions(), ", ")},
				))
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// versionFromPath returns "vN" for paths starting with /vN/ or equal to /vN.
func versionFromPath(path string) string {
	segment := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	if len(segment) < 2 || segment[0] != 'v' {
		return ""
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segment
}

func (vm *VersionMiddleware) SupportedVersions() []string {
	versions := make([]string, 0, len(vm.versions))
	for v := range vm.versions {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
