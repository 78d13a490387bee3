package models

import "time"

// TeacherReview is the teacher-side copy of a review, carrying the author's user name.
type TeacherReview struct {
	TeacherID string    `db:"teacher_id" json:"-"`
	UserID    string    `db:"user_id" json:"user"`
	UserName  string    `db:"user_name" json:"userName"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	Date      time.Time `db:"created_at" json:"date"`
}

// UserReview is the user-side copy of a review.
type UserReview struct {
	UserID    string    `db:"user_id" json:"-"`
	TeacherID string    `db:"teacher_id" json:"teacher"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	Date      time.Time `db:"created_at" json:"date"`
}

// Review is the payload written to both sides of the ledger.
type Review struct {
	UserID    string    `json:"user"`
	TeacherID string    `json:"teacher"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}

// TeacherSide returns the denormalised teacher copy.
func (r Review) TeacherSide() TeacherReview {
	return TeacherReview{TeacherID: r.TeacherID, UserID: r.UserID, UserName: r.UserName, Rating: r.Rating, Comment: r.Comment, Date: r.Date}
}

// UserSide returns the denormalised user copy.
func (r Review) UserSide() UserReview {
	return UserReview{UserID: r.UserID, TeacherID: r.TeacherID, Rating: r.Rating, Comment: r.Comment, Date: r.Date}
}
