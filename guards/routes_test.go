package guards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := map[string]Area{
		"/":                               Public,
		"":                                Public,
		"#/":                              Public,
		"/about":                          Public,
		"/about/history":                  Public,
		"/about/leadership/pastor-john":   Public,
		"/events":                         Public,
		"/events/youth?month=3":           Public,
		"/im-new":                         Public,
		"/giving/":                        Public,
		"/need-prayer":                    Public,
		"/contact":                        Public,
		"/login":                          Public,
		"/login-error?error=login_failed": Public,
		"/auth/callback":                  Public,
		"/terms":                          Public,
		"/privacy":                        Public,
		"/pending-approval":               Pending,
		"/dashboard":                      Member,
		"/dashboard/prayer-wall":          Member,
		"dashboard/newsletters":           Member,
		"/admin":                          Admin,
		"/admin/users":                    Admin,
		"/Admin/Events/":                  Admin,
		"/administrator":                  Unknown,
		"/dashboards":                     Unknown,
		"/nowhere":                        Unknown,
	}

	for path, expected := range tests {
		assert.Equal(t, expected, Classify(path), path)
	}
}
