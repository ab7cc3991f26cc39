package model

import "time"

// Profile は求職者のプロフィール（ユーザーと1対1）。
// SummaryはHTML入力を許可するため、保存前にサニタイズされる。
type Profile struct {
	UserID    string
	FullName  string
	Headline  string
	Summary   string
	Location  string
	Phone     string
	Website   string
	UpdatedAt time.Time
}

// ApplicationStatus は応募記録の選考ステータス。
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusScreening ApplicationStatus = "screening"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// ValidApplicationStatus は指定されたステータスが有効な値かどうかを判定する。
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterview,
		StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// Application は求人への応募記録を表す。
// NotesはHTML入力を許可するため、保存前にサニタイズされる。
type Application struct {
	ID        string
	UserID    string
	Company   string
	Position  string
	Status    ApplicationStatus
	AppliedAt *time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Education は学歴記録を表す。
type Education struct {
	ID        string
	UserID    string
	School    string
	Degree    string
	Field     string
	StartYear int
	EndYear   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Skill は保有スキルを表す。Levelは0〜5の自己評価。
type Skill struct {
	ID        string
	UserID    string
	Name      string
	Level     int
	Years     int
	CreatedAt time.Time
}
