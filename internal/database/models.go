package database

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a prefixed identifier like "faculty_3f9c2ab41d07".
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:12]
}

// User represents a student (or admin) account
type User struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Picture     *string   `json:"picture,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	Preferences []string  `json:"preferences"`
	AIInterests []string  `json:"ai_interests"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// NewUser creates a new user provisioned from a login email
func NewUser(email, name string, isAdmin bool) *User {
	now := time.Now().UTC()
	return &User{
		UserID:      NewID("user"),
		Email:       email,
		Name:        name,
		IsAdmin:     isAdmin,
		Preferences: []string{},
		AIInterests: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Session is a revocable login session backing a JWT cookie
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Faculty represents a faculty profile with its per-category rating
// aggregates. AvgRatings and RatingCounts are keyed by category name
// (teaching, attendance, doubt_clarification, overall).
type Faculty struct {
	FacultyID         string             `json:"faculty_id"`
	Name              string             `json:"name"`
	Department        string             `json:"department"`
	Designation       string             `json:"designation"`
	ImageURL          *string            `json:"image_url,omitempty"`
	ScholarProfile    *string            `json:"scholar_profile,omitempty"`
	ResearchInterests *string            `json:"research_interests,omitempty"`
	Publications      []string           `json:"publications"`
	AvgRatings        map[string]float64 `json:"avg_ratings"`
	RatingCounts      map[string]int     `json:"rating_counts"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NewFaculty creates a faculty profile with zeroed aggregates
func NewFaculty(name, department, designation string) *Faculty {
	return &Faculty{
		FacultyID:    NewID("faculty"),
		Name:         name,
		Department:   department,
		Designation:  designation,
		Publications: []string{},
		AvgRatings:   emptyAverages(),
		RatingCounts: emptyCounts(),
		CreatedAt:    time.Now().UTC(),
	}
}

func emptyAverages() map[string]float64 {
	return map[string]float64{
		"teaching":            0,
		"attendance":          0,
		"doubt_clarification": 0,
		"overall":             0,
	}
}

func emptyCounts() map[string]int {
	return map[string]int{
		"teaching":            0,
		"attendance":          0,
		"doubt_clarification": 0,
		"overall":             0,
	}
}

// Rating is a user's current rating of one faculty member. Category
// values are nil when the user has never supplied that category.
// At most one row exists per (faculty, user) pair.
type Rating struct {
	RatingID           string    `json:"rating_id"`
	FacultyID          string    `json:"faculty_id"`
	UserID             string    `json:"user_id"`
	Teaching           *int      `json:"teaching"`
	Attendance         *int      `json:"attendance"`
	DoubtClarification *int      `json:"doubt_clarification"`
	Overall            *int      `json:"overall"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Value returns the stored value for a category, or nil.
func (r *Rating) Value(category string) *int {
	switch category {
	case "teaching":
		return r.Teaching
	case "attendance":
		return r.Attendance
	case "doubt_clarification":
		return r.DoubtClarification
	case "overall":
		return r.Overall
	}
	return nil
}

// SetValue stores a category value on the rating record.
func (r *Rating) SetValue(category string, value int) {
	v := value
	switch category {
	case "teaching":
		r.Teaching = &v
	case "attendance":
		r.Attendance = &v
	case "doubt_clarification":
		r.DoubtClarification = &v
	case "overall":
		r.Overall = &v
	}
}

// Comment is a public comment on a faculty profile
type Comment struct {
	CommentID       string    `json:"comment_id"`
	FacultyID       string    `json:"faculty_id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserPicture     *string   `json:"user_picture,omitempty"`
	Content         string    `json:"content"`
	ParentCommentID *string   `json:"parent_comment_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Chat is a 1:1 conversation between two users
type Chat struct {
	ChatID       string        `json:"chat_id"`
	Participants []string      `json:"participants"`
	Messages     []ChatMessage `json:"messages"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ChatMessage is one message in a chat. SenderHandle is the anonymous
// display identifier shown instead of the sender's real name.
type ChatMessage struct {
	MessageID    string    `json:"message_id"`
	SenderID     string    `json:"sender_id"`
	SenderHandle string    `json:"sender_handle"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
