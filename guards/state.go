// Package guards decides, from a session snapshot, whether a portal route may
// be shown or where the visitor should be sent instead.
package guards

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChurchPortal/models"
)

type AccessState int

const (
	Loading AccessState = iota
	Anonymous
	Unapproved
	ApprovedMember
	ApprovedAdmin
)

func (s AccessState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case Unapproved:
		return "authenticated-unapproved"
	case ApprovedMember:
		return "authenticated-approved-member"
	case ApprovedAdmin:
		return "authenticated-approved-admin"
	}
	return fmt.Sprintf("AccessState(%d)", int(s))
}

// StateFor derives the access state of a snapshot. The admin state needs both
// the admin role and the single configured administrator address.
func StateFor(user *models.User, loading bool, adminEmail string) AccessState {
	switch {
	case loading:
		return Loading
	case user == nil:
		return Anonymous
	case !user.Is_Approved:
		return Unapproved
	case user.IsAdmin() && IsAdminEmail(user.Email, adminEmail):
		return ApprovedAdmin
	default:
		return ApprovedMember
	}
}

func IsAdminEmail(email, adminEmail string) bool {
	if adminEmail == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(adminEmail))
}

type DecisionKind int

const (
	Render DecisionKind = iota
	Redirect
	Placeholder
)

func (k DecisionKind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Placeholder:
		return "placeholder"
	}
	return fmt.Sprintf("DecisionKind(%d)", int(k))
}

type Decision struct {
	Kind     DecisionKind
	Location string
}

func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Decision string `json:"decision"`
		Location string `json:"location,omitempty"`
	}{d.Kind.String(), d.Location})
}

func render() Decision { return Decision{Kind: Render} }

func redirect(location string) Decision { return Decision{Kind: Redirect, Location: location} }

// Evaluate is re-run on every request; nothing is remembered between calls.
func Evaluate(state AccessState, area Area) Decision {
	switch area {
	case Public, Pending:
		return render()
	case Member:
		switch state {
		case Loading:
			return Decision{Kind: Placeholder}
		case Anonymous:
			return redirect(LoginPath)
		case Unapproved:
			return redirect(PendingApprovalPath)
		case ApprovedMember:
			return render()
		case ApprovedAdmin:
			return redirect(AdminPath)
		}
	case Admin:
		switch state {
		case Loading:
			return Decision{Kind: Placeholder}
		case Anonymous:
			return redirect(LoginPath)
		case Unapproved:
			return redirect(PendingApprovalPath)
		case ApprovedMember:
			return redirect(DashboardPath)
		case ApprovedAdmin:
			return render()
		}
	case Unknown:
		return redirect(HomePath)
	}
	panic(fmt.Sprintf("guards: unhandled state %s for area %s", state, area))
}

// DefaultLandingPath is used when a login finishes before the profile does.
const DefaultLandingPath = DashboardPath

// LandingPath is where a freshly signed-in visitor should start.
func LandingPath(state AccessState) string {
	switch state {
	case ApprovedAdmin:
		return AdminPath
	case ApprovedMember:
		return DashboardPath
	case Unapproved:
		return PendingApprovalPath
	case Anonymous:
		return LoginPath
	}
	return DefaultLandingPath
}
