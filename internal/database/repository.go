package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// categoryColumns maps a rating category to its aggregate column pair.
// Only these four categories exist; anything else is rejected before SQL
// is built, so the column names are never attacker-controlled.
var categoryColumns = map[string]struct{ avg, count string }{
	"teaching":            {"avg_teaching", "count_teaching"},
	"attendance":          {"avg_attendance", "count_attendance"},
	"doubt_clarification": {"avg_doubt_clarification", "count_doubt_clarification"},
	"overall":             {"avg_overall", "count_overall"},
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeStrings(data string) []string {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return []string{}
	}
	return values
}

// --- users ---

// UserByEmail fetches a user by email, returning nil when absent.
func (r *Repository) UserByEmail(email string) (*User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT user_id, email, name, picture, is_admin, preferences, ai_interests, created_at, updated_at
		FROM users WHERE email = ?
	`, email))
}

// UserByID fetches a user by id, returning nil when absent.
func (r *Repository) UserByID(userID string) (*User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT user_id, email, name, picture, is_admin, preferences, ai_interests, created_at, updated_at
		FROM users WHERE user_id = ?
	`, userID))
}

func (r *Repository) scanUser(row *sql.Row) (*User, error) {
	var user User
	var preferences, aiInterests string

	err := row.Scan(&user.UserID, &user.Email, &user.Name, &user.Picture,
		&user.IsAdmin, &preferences, &aiInterests, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Preferences = decodeStrings(preferences)
	user.AIInterests = decodeStrings(aiInterests)
	return &user, nil
}

// CreateUser inserts a new user row
func (r *Repository) CreateUser(user *User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (user_id, email, name, picture, is_admin, preferences, ai_interests, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.UserID, user.Email, user.Name, user.Picture, user.IsAdmin,
		encodeStrings(user.Preferences), encodeStrings(user.AIInterests),
		user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields; nil fields are left
// untouched.
type ProfileUpdate struct {
	Name        *string
	Picture     *string
	Preferences []string
	AIInterests []string
}

// UpdateUserProfile applies a partial profile update and returns the
// refreshed user.
func (r *Repository) UpdateUserProfile(userID string, update ProfileUpdate) (*User, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Picture != nil {
		sets = append(sets, "picture = ?")
		args = append(args, *update.Picture)
	}
	if update.Preferences != nil {
		sets = append(sets, "preferences = ?")
		args = append(args, encodeStrings(update.Preferences))
	}
	if update.AIInterests != nil {
		sets = append(sets, "ai_interests = ?")
		args = append(args, encodeStrings(update.AIInterests))
	}

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE user_id = ?", strings.Join(sets, ", "))

	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	return r.UserByID(userID)
}

// --- sessions ---

// CreateSession stores a login session
func (r *Repository) CreateSession(session *Session) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// SessionByToken fetches a session, returning nil when absent.
func (r *Repository) SessionByToken(token string) (*Session, error) {
	var session Session
	err := r.db.QueryRow(`
		SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?
	`, token).Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

// DeleteSession revokes a session token
func (r *Repository) DeleteSession(token string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before the cutoff
// and returns how many were removed.
func (r *Repository) DeleteExpiredSessions(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// --- faculty ---

const facultySelect = `
	SELECT faculty_id, name, department, designation, image_url, scholar_profile,
		   research_interests, publications,
		   avg_teaching, count_teaching, avg_attendance, count_attendance,
		   avg_doubt_clarification, count_doubt_clarification, avg_overall, count_overall,
		   created_at
	FROM faculty
`

func scanFaculty(scan func(dest ...interface{}) error) (*Faculty, error) {
	var fac Faculty
	var publications string

	fac.AvgRatings = emptyAverages()
	fac.RatingCounts = emptyCounts()

	avgT, avgA, avgD, avgO := new(float64), new(float64), new(float64), new(float64)
	cntT, cntA, cntD, cntO := new(int), new(int), new(int), new(int)

	err := scan(&fac.FacultyID, &fac.Name, &fac.Department, &fac.Designation,
		&fac.ImageURL, &fac.ScholarProfile, &fac.ResearchInterests, &publications,
		avgT, cntT, avgA, cntA, avgD, cntD, avgO, cntO, &fac.CreatedAt)
	if err != nil {
		return nil, err
	}

	fac.Publications = decodeStrings(publications)
	fac.AvgRatings["teaching"], fac.RatingCounts["teaching"] = *avgT, *cntT
	fac.AvgRatings["attendance"], fac.RatingCounts["attendance"] = *avgA, *cntA
	fac.AvgRatings["doubt_clarification"], fac.RatingCounts["doubt_clarification"] = *avgD, *cntD
	fac.AvgRatings["overall"], fac.RatingCounts["overall"] = *avgO, *cntO

	return &fac, nil
}

// ListFaculty returns all faculty, optionally filtered by a
// case-insensitive department substring, ordered by insertion.
func (r *Repository) ListFaculty(department string) ([]Faculty, error) {
	query := facultySelect + ` ORDER BY rowid`
	var args []interface{}

	if department != "" {
		query = facultySelect + ` WHERE LOWER(department) LIKE ? ORDER BY rowid`
		args = append(args, "%"+strings.ToLower(department)+"%")
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query faculty: %w", err)
	}
	defer rows.Close()

	var list []Faculty
	for rows.Next() {
		fac, err := scanFaculty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faculty: %w", err)
		}
		list = append(list, *fac)
	}
	return list, rows.Err()
}

// FacultyByID fetches one faculty profile, returning nil when absent.
func (r *Repository) FacultyByID(facultyID string) (*Faculty, error) {
	row := r.db.QueryRow(facultySelect+` WHERE faculty_id = ?`, facultyID)
	fac, err := scanFaculty(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan faculty: %w", err)
	}
	return fac, nil
}

// CreateFaculty inserts a faculty profile with zeroed aggregates
func (r *Repository) CreateFaculty(fac *Faculty) error {
	_, err := r.db.Exec(`
		INSERT INTO faculty (faculty_id, name, department, designation, image_url,
			scholar_profile, research_interests, publications, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fac.FacultyID, fac.Name, fac.Department, fac.Designation, fac.ImageURL,
		fac.ScholarProfile, fac.ResearchInterests, encodeStrings(fac.Publications), fac.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create faculty: %w", err)
	}
	return nil
}

// FacultyUpdate carries mutable profile fields; nil fields are left
// untouched. Aggregates are never written through this path.
type FacultyUpdate struct {
	Name              *string
	Department        *string
	Designation       *string
	ImageURL          *string
	ScholarProfile    *string
	ResearchInterests *string
	Publications      []string
}

// UpdateFaculty applies a partial profile update. Returns nil, nil when
// the faculty does not exist.
func (r *Repository) UpdateFaculty(facultyID string, update FacultyUpdate) (*Faculty, error) {
	sets := []string{}
	args := []interface{}{}

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Department != nil {
		sets = append(sets, "department = ?")
		args = append(args, *update.Department)
	}
	if update.Designation != nil {
		sets = append(sets, "designation = ?")
		args = append(args, *update.Designation)
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *update.ImageURL)
	}
	if update.ScholarProfile != nil {
		sets = append(sets, "scholar_profile = ?")
		args = append(args, *update.ScholarProfile)
	}
	if update.ResearchInterests != nil {
		sets = append(sets, "research_interests = ?")
		args = append(args, *update.ResearchInterests)
	}
	if update.Publications != nil {
		sets = append(sets, "publications = ?")
		args = append(args, encodeStrings(update.Publications))
	}

	if len(sets) > 0 {
		args = append(args, facultyID)
		query := fmt.Sprintf("UPDATE faculty SET %s WHERE faculty_id = ?", strings.Join(sets, ", "))

		result, err := r.db.Exec(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update faculty: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return nil, nil
		}
	}

	return r.FacultyByID(facultyID)
}

// DeleteFaculty removes a faculty profile; reports whether a row existed.
func (r *Repository) DeleteFaculty(facultyID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM faculty WHERE faculty_id = ?`, facultyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete faculty: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// SetPublications replaces the stored publication titles for a faculty,
// optionally recording the matched scholar profile URL.
func (r *Repository) SetPublications(facultyID string, titles []string, scholarProfile *string) error {
	var err error
	if scholarProfile != nil {
		_, err = r.db.Exec(`UPDATE faculty SET publications = ?, scholar_profile = ? WHERE faculty_id = ?`,
			encodeStrings(titles), *scholarProfile, facultyID)
	} else {
		_, err = r.db.Exec(`UPDATE faculty SET publications = ? WHERE faculty_id = ?`,
			encodeStrings(titles), facultyID)
	}
	if err != nil {
		return fmt.Errorf("failed to set publications: %w", err)
	}
	return nil
}

// CategoryApplication pairs a category with the closure that folds a
// submitted value into its stored (average, count) pair.
type CategoryApplication struct {
	Category string
	Apply    func(avg float64, count int) (float64, int)
}

// applyCategoryStats performs the read-modify-write of one category's
// (average, count) pair inside the caller's transaction.
func applyCategoryStats(tx *sql.Tx, facultyID string, app CategoryApplication) error {
	cols, ok := categoryColumns[app.Category]
	if !ok {
		return fmt.Errorf("unknown rating category: %s", app.Category)
	}

	var avg float64
	var count int
	query := fmt.Sprintf("SELECT %s, %s FROM faculty WHERE faculty_id = ?", cols.avg, cols.count)
	if err := tx.QueryRow(query, facultyID).Scan(&avg, &count); err != nil {
		return fmt.Errorf("failed to read %s stats: %w", app.Category, err)
	}

	newAvg, newCount := app.Apply(avg, count)

	update := fmt.Sprintf("UPDATE faculty SET %s = ?, %s = ? WHERE faculty_id = ?", cols.avg, cols.count)
	if _, err := tx.Exec(update, newAvg, newCount, facultyID); err != nil {
		return fmt.Errorf("failed to write %s stats: %w", app.Category, err)
	}
	return nil
}

// --- ratings ---

// RatingByFacultyUser fetches the unique rating row for a (faculty, user)
// pair, returning nil when the user has not rated this faculty.
func (r *Repository) RatingByFacultyUser(facultyID, userID string) (*Rating, error) {
	var rating Rating
	err := r.db.QueryRow(`
		SELECT rating_id, faculty_id, user_id, teaching, attendance, doubt_clarification, overall,
			   created_at, updated_at
		FROM ratings WHERE faculty_id = ? AND user_id = ?
	`, facultyID, userID).Scan(&rating.RatingID, &rating.FacultyID, &rating.UserID,
		&rating.Teaching, &rating.Attendance, &rating.DoubtClarification, &rating.Overall,
		&rating.CreatedAt, &rating.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rating: %w", err)
	}
	return &rating, nil
}

// SaveRating writes the rating row and applies every affected category
// aggregate in one transaction. A failure anywhere rolls back the row
// write too, so the stored rating never drifts apart from the
// aggregates it contributed to. insert distinguishes a first submission
// from a revision of an existing row.
func (r *Repository) SaveRating(rating *Rating, insert bool, apps []CategoryApplication) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer tx.Rollback()

	if insert {
		_, err = tx.Exec(`
			INSERT INTO ratings (rating_id, faculty_id, user_id, teaching, attendance,
				doubt_clarification, overall, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rating.RatingID, rating.FacultyID, rating.UserID, rating.Teaching, rating.Attendance,
			rating.DoubtClarification, rating.Overall, rating.CreatedAt, rating.UpdatedAt)
	} else {
		_, err = tx.Exec(`
			UPDATE ratings SET teaching = ?, attendance = ?, doubt_clarification = ?, overall = ?, updated_at = ?
			WHERE rating_id = ?
		`, rating.Teaching, rating.Attendance, rating.DoubtClarification, rating.Overall,
			rating.UpdatedAt, rating.RatingID)
	}
	if err != nil {
		return fmt.Errorf("failed to write rating row: %w", err)
	}

	for _, app := range apps {
		if err := applyCategoryStats(tx, rating.FacultyID, app); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating transaction: %w", err)
	}
	return nil
}

// --- comments ---

// CommentsByFaculty returns a faculty's comments oldest first
func (r *Repository) CommentsByFaculty(facultyID string) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT comment_id, faculty_id, user_id, user_name, user_picture, content, parent_comment_id, created_at
		FROM comments WHERE faculty_id = ? ORDER BY created_at
	`, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.CommentID, &c.FacultyID, &c.UserID, &c.UserName,
			&c.UserPicture, &c.Content, &c.ParentCommentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CommentByID fetches one comment, returning nil when absent.
func (r *Repository) CommentByID(commentID string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRow(`
		SELECT comment_id, faculty_id, user_id, user_name, user_picture, content, parent_comment_id, created_at
		FROM comments WHERE comment_id = ?
	`, commentID).Scan(&c.CommentID, &c.FacultyID, &c.UserID, &c.UserName,
		&c.UserPicture, &c.Content, &c.ParentCommentID, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	return &c, nil
}

// InsertComment stores a comment
func (r *Repository) InsertComment(c *Comment) error {
	_, err := r.db.Exec(`
		INSERT INTO comments (comment_id, faculty_id, user_id, user_name, user_picture, content, parent_comment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.CommentID, c.FacultyID, c.UserID, c.UserName, c.UserPicture, c.Content, c.ParentCommentID, c.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment
func (r *Repository) DeleteComment(commentID string) error {
	if _, err := r.db.Exec(`DELETE FROM comments WHERE comment_id = ?`, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// --- chats ---

// ParticipantKey builds the canonical identity of a 1:1 chat: the sorted
// participant pair joined with '|'.
func ParticipantKey(participants []string) string {
	sorted := append([]string(nil), participants...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// ChatByParticipants fetches the chat for a participant pair, returning
// nil when no chat exists yet. Messages are not loaded.
func (r *Repository) ChatByParticipants(participants []string) (*Chat, error) {
	var chat Chat
	var encoded string
	err := r.db.QueryRow(`
		SELECT chat_id, participants, created_at, updated_at FROM chats WHERE participant_key = ?
	`, ParticipantKey(participants)).Scan(&chat.ChatID, &encoded, &chat.CreatedAt, &chat.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	chat.Participants = decodeStrings(encoded)
	return &chat, nil
}

// ChatByID loads a chat without its messages, or nil when absent
func (r *Repository) ChatByID(chatID string) (*Chat, error) {
	var chat Chat
	var encoded string
	err := r.db.QueryRow(`
		SELECT chat_id, participants, created_at, updated_at FROM chats WHERE chat_id = ?
	`, chatID).Scan(&chat.ChatID, &encoded, &chat.CreatedAt, &chat.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	chat.Participants = decodeStrings(encoded)
	return &chat, nil
}

// InsertChat stores a new chat
func (r *Repository) InsertChat(chat *Chat) error {
	_, err := r.db.Exec(`
		INSERT INTO chats (chat_id, participant_key, participants, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, chat.ChatID, ParticipantKey(chat.Participants), encodeStrings(chat.Participants),
		chat.CreatedAt, chat.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// AppendChatMessage adds a message to a chat and bumps updated_at
func (r *Repository) AppendChatMessage(chatID string, msg *ChatMessage) error {
	_, err := r.db.Exec(`
		INSERT INTO chat_messages (message_id, chat_id, sender_id, sender_handle, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.MessageID, chatID, msg.SenderID, msg.SenderHandle, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	if _, err := r.db.Exec(`UPDATE chats SET updated_at = ? WHERE chat_id = ?`, msg.CreatedAt, chatID); err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	return nil
}

// ChatsForUser returns all chats the user participates in, newest
// activity first, with messages loaded oldest first.
func (r *Repository) ChatsForUser(userID string) ([]Chat, error) {
	rows, err := r.db.Query(`
		SELECT chat_id, participants, created_at, updated_at
		FROM chats WHERE participant_key LIKE ? OR participant_key LIKE ? OR participant_key = ?
		ORDER BY updated_at DESC LIMIT 100
	`, userID+"|%", "%|"+userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	chats := []Chat{}
	for rows.Next() {
		var chat Chat
		var encoded string
		if err := rows.Scan(&chat.ChatID, &encoded, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chat.Participants = decodeStrings(encoded)
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chats {
		messages, err := r.ChatMessages(chats[i].ChatID)
		if err != nil {
			return nil, err
		}
		chats[i].Messages = messages
	}
	return chats, nil
}

// ChatMessages returns a chat's messages oldest first
func (r *Repository) ChatMessages(chatID string) ([]ChatMessage, error) {
	rows, err := r.db.Query(`
		SELECT message_id, sender_id, sender_handle, content, created_at
		FROM chat_messages WHERE chat_id = ? ORDER BY created_at
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.MessageID, &m.SenderID, &m.SenderHandle, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteChatMessagesBefore prunes messages older than the cutoff and
// returns how many were removed.
func (r *Repository) DeleteChatMessagesBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM chat_messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune chat messages: %w", err)
	}
	return result.RowsAffected()
}
