package controllers

import (
	"time"

	"github.com/ChurchPortal/models"
	"github.com/DATA-DOG/go-sqlmock"
)

// Test fixture data for use in tests

const (
	testAdminEmail  = "pastor@church.example"
	testPrayerID    = "5b8f9f0e-3c36-4a5f-9a53-2f6b1d2e7c10"
	testEventID     = "0d0c3f57-2d8e-4a58-b1a6-c4f1f5a90b21"
	testNewsletter  = "8f14e45f-ceea-467a-9b0e-3f8e5f1c2d33"
	testRosterID    = "c9f0f895-fb98-4b5e-8a4b-1d2e3f4a5b44"
	testTeamID      = "45c48cce-2e2d-4fbd-a0a3-5b6c7d8e9f55"
	testFolderID    = "d3d94468-02a4-4a3e-9c1b-2a3b4c5d6e66"
	testPhotoID     = "6512bd43-d9ca-4c6a-b1f4-7a8b9c0d1e77"
	testMemberID    = "abc123"
	testPendingID   = "pending-1"
	testAdminUserID = "admin-1"
)

var userColumns = []string{"id", "email", "phone", "name", "is_approved", "role", "created_at", "user_timezone"}

// MockUser creates an approved member
func MockUser() models.User {
	tz := "America/Chicago"
	return models.User{
		ID:            testMemberID,
		Email:         "member@example.com",
		Name:          "Test Member",
		Is_Approved:   true,
		Role:          models.RoleMember,
		Created_At:    time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		User_Timezone: &tz,
	}
}

// MockPendingUser creates a member waiting for approval
func MockPendingUser() models.User {
	phone := "+15551234567"
	return models.User{
		ID:         testPendingID,
		Email:      "new@example.com",
		Phone:      &phone,
		Name:       "New Member",
		Role:       models.RoleMember,
		Created_At: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC),
	}
}

// MockAdminUser creates the configured administrator
func MockAdminUser() models.User {
	return models.User{
		ID:          testAdminUserID,
		Email:       testAdminEmail,
		Name:        "Pastor",
		Is_Approved: true,
		Role:        models.RoleAdmin,
		Created_At:  time.Date(2023, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
}

func userRow(rows *sqlmock.Rows, u models.User) *sqlmock.Rows {
	var phone, tz any
	if u.Phone != nil {
		phone = *u.Phone
	}
	if u.User_Timezone != nil {
		tz = *u.User_Timezone
	}
	return rows.AddRow(u.ID, u.Email, phone, u.Name, u.Is_Approved, u.Role, u.Created_At, tz)
}

var prayerRequestColumns = []string{"id", "user_id", "name", "content", "is_anonymous", "is_confidential", "prayer_count", "created_at", "user_timezone"}

// MockPrayerRequest creates a public prayer request
func MockPrayerRequest() models.PrayerRequest {
	return models.PrayerRequest{
		ID:           testPrayerID,
		Name:         "Jane",
		Content:      "Please pray for my family",
		Prayer_Count: 3,
		Created_At:   time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func prayerRequestRow(rows *sqlmock.Rows, p models.PrayerRequest) *sqlmock.Rows {
	var userID, tz any
	if p.User_ID != nil {
		userID = *p.User_ID
	}
	if p.User_Timezone != nil {
		tz = *p.User_Timezone
	}
	return rows.AddRow(p.ID, userID, p.Name, p.Content, p.Is_Anonymous, p.Is_Confidential, p.Prayer_Count, p.Created_At, tz)
}

var eventColumns = []string{"id", "title", "date", "time", "location", "category", "description", "is_public", "created_at", "updated_at"}

// MockEvent creates a public event
func MockEvent() models.Event {
	return models.Event{
		ID:         testEventID,
		Title:      "Harvest Festival",
		Date:       time.Date(2030, time.October, 5, 0, 0, 0, 0, time.UTC),
		Time:       "10:00 AM",
		Location:   "Fellowship Hall",
		Category:   "Community",
		Is_Public:  true,
		Created_At: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
		Updated_At: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func eventRow(rows *sqlmock.Rows, e models.Event) *sqlmock.Rows {
	return rows.AddRow(e.ID, e.Title, e.Date, e.Time, e.Location, e.Category, nil, e.Is_Public, e.Created_At, e.Updated_At)
}

var newsletterColumns = []string{"id", "title", "month", "year", "pdf_url", "created_at", "updated_at"}

// MockNewsletter creates a newsletter published on created
func MockNewsletter(id, month string, created time.Time) models.Newsletter {
	return models.Newsletter{
		ID:         id,
		Title:      month + " Newsletter",
		Month:      month,
		Year:       created.Year(),
		Pdf_Url:    "https://storage.googleapis.com/test-bucket/newsletters/" + id + ".pdf",
		Created_At: created,
		Updated_At: created,
	}
}

func newsletterRow(rows *sqlmock.Rows, n models.Newsletter) *sqlmock.Rows {
	return rows.AddRow(n.ID, n.Title, n.Month, n.Year, n.Pdf_Url, n.Created_At, n.Updated_At)
}

var rosterColumns = []string{"id", "date", "pdf_url", "created_at", "updated_at"}

var teamColumns = []string{"id", "name", "role", "email", "phone", "img", "description", "created_at", "updated_at"}

// MockTeamMember creates a directory entry
func MockTeamMember(id, name, role string) models.TeamMember {
	return models.TeamMember{
		ID:          id,
		Name:        name,
		Role:        role,
		Email:       "team@church.example",
		Img:         "https://storage.googleapis.com/test-bucket/team/" + id + ".jpg",
		Description: name + " serves as " + role + ".",
		Created_At:  time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
		Updated_At:  time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func teamRow(rows *sqlmock.Rows, m models.TeamMember) *sqlmock.Rows {
	return rows.AddRow(m.ID, m.Name, m.Role, m.Email, m.Phone, m.Img, m.Description, m.Created_At, m.Updated_At)
}

var photoColumns = []string{"id", "folder_id", "url", "description", "created_at"}
