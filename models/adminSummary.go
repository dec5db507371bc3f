package models

type AdminSummary struct {
	PendingUsers   int64 `json:"pendingUsers"`
	Members        int64 `json:"members"`
	PrayerRequests int64 `json:"prayerRequests"`
	UpcomingEvents int64 `json:"upcomingEvents"`
	Newsletters    int64 `json:"newsletters"`
}
