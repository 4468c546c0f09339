package types

// LoginRequest is the credentials payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateRequest carries a partial profile update; omitted fields
// are left unchanged.
type ProfileUpdateRequest struct {
	Name        *string  `json:"name"`
	Picture     *string  `json:"picture"`
	Preferences []string `json:"preferences"`
	AIInterests []string `json:"ai_interests"`
}

// FacultyCreateRequest is the admin payload for creating a faculty profile
type FacultyCreateRequest struct {
	Name              string  `json:"name" binding:"required"`
	Department        string  `json:"department" binding:"required"`
	Designation       string  `json:"designation" binding:"required"`
	ImageURL          *string `json:"image_url"`
	ScholarProfile    *string `json:"scholar_profile"`
	ResearchInterests *string `json:"research_interests"`
}

// FacultyUpdateRequest is the admin payload for a partial faculty update
type FacultyUpdateRequest struct {
	Name              *string  `json:"name"`
	Department        *string  `json:"department"`
	Designation       *string  `json:"designation"`
	ImageURL          *string  `json:"image_url"`
	ScholarProfile    *string  `json:"scholar_profile"`
	ResearchInterests *string  `json:"research_interests"`
	Publications      []string `json:"publications"`
}

// CommentRequest is the payload for posting a comment on a faculty
type CommentRequest struct {
	Content         string  `json:"content" binding:"required,max=2000"`
	ParentCommentID *string `json:"parent_comment_id"`
}

// ChatStartRequest opens or returns the chat with another user
type ChatStartRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

// ChatMessageRequest posts one message into a chat
type ChatMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
