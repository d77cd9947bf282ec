package model

import "time"

// Location は旅行記で参照される地点を表す。
type Location struct {
	ID        string
	PublicID  string
	Name      string
	Latitude  float64
	Longitude float64
}

// Journey は出発地と到着地を持つ旅程を表す。
type Journey struct {
	ID              string
	PublicID        string
	Title           string
	StartLocationID string
	EndLocationID   string
	UserID          string
}

// Log は旅行記の1エントリを表す。
// BodyTextは保存前にサニタイズ済みのHTML。
// JourneyIDは任意で、旅程に属さない単発の記録も許容する。
type Log struct {
	ID         string
	PublicID   string
	Title      string
	BodyText   string
	ImageURL   string
	CreatedOn  time.Time
	UserID     string
	LocationID string
	JourneyID  string
}

// Follower はフォロー関係のエッジを表す。
// (FollowerID, FollowingID) が複合主キーであり、重複エッジはDB制約で防がれる。
type Follower struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}
