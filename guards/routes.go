package guards

import (
	"fmt"
	"strings"
)

const (
	HomePath            = "/"
	LoginPath           = "/login"
	LoginErrorPath      = "/login-error"
	PendingApprovalPath = "/pending-approval"
	DashboardPath       = "/dashboard"
	AdminPath           = "/admin"
	AboutPath           = "/about"
)

type Area int

const (
	Unknown Area = iota
	Public
	Pending
	Member
	Admin
)

func (a Area) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case Public:
		return "public"
	case Pending:
		return "pending"
	case Member:
		return "member"
	case Admin:
		return "admin"
	}
	return fmt.Sprintf("Area(%d)", int(a))
}

var publicExact = map[string]bool{
	"/":              true,
	"/im-new":        true,
	"/giving":        true,
	"/need-prayer":   true,
	"/contact":       true,
	"/login":         true,
	"/login-error":   true,
	"/auth/callback": true,
	"/terms":         true,
	"/privacy":       true,
}

// publicPrefixes cover pages with sub-pages, e.g. /about/leadership/:slug.
var publicPrefixes = []string{"/about", "/events"}

// Classify maps a hash route to the area that guards it. Query strings and
// fragments are ignored, as is a trailing slash.
func Classify(path string) Area {
	path = normalise(path)

	switch {
	case publicExact[path]:
		return Public
	case path == PendingApprovalPath:
		return Pending
	case underPrefix(path, DashboardPath):
		return Member
	case underPrefix(path, AdminPath):
		return Admin
	}

	for _, prefix := range publicPrefixes {
		if underPrefix(path, prefix) {
			return Public
		}
	}

	return Unknown
}

func normalise(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "#")
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return strings.ToLower(path)
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
