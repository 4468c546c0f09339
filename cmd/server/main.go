package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vitapstudent/faculty-hub/internal/cache"
	"github.com/vitapstudent/faculty-hub/internal/config"
	"github.com/vitapstudent/faculty-hub/internal/database"
	"github.com/vitapstudent/faculty-hub/internal/errors"
	"github.com/vitapstudent/faculty-hub/internal/middleware"
	"github.com/vitapstudent/faculty-hub/internal/monitoring"
	"github.com/vitapstudent/faculty-hub/internal/openalex"
	"github.com/vitapstudent/faculty-hub/internal/privacy"
	"github.com/vitapstudent/faculty-hub/internal/ranking"
	"github.com/vitapstudent/faculty-hub/internal/ratelimit"
	"github.com/vitapstudent/faculty-hub/internal/ratings"
	"github.com/vitapstudent/faculty-hub/internal/recommend"
	"github.com/vitapstudent/faculty-hub/internal/scholarsync"
	"github.com/vitapstudent/faculty-hub/internal/security"
	"github.com/vitapstudent/faculty-hub/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.LogLevel)

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.SeedDemoFaculty(logger); err != nil {
		slog.Error("Failed to seed faculty catalog", "error", err)
		os.Exit(1)
	}

	userService := database.NewUserService(repo, []byte(cfg.SessionSecret),
		cfg.AllowedEmailDomain, cfg.SharedPassword, cfg.AdminEmail)
	ratingService := ratings.NewService(repo)
	rankingService := ranking.NewService(repo, logger,
		time.Duration(cfg.RankingCacheTTLSeconds)*time.Second)

	// OpenAlex client behind a pooled connection with a circuit breaker
	alexPool := openalex.NewDefaultPool(logger)
	alexClient := openalex.NewClient(cfg.OpenAlexBaseURL, cfg.OpenAlexMailto, alexPool, logger)
	syncService := scholarsync.NewService(repo, alexClient, logger, cfg.InstitutionID,
		time.Duration(cfg.SyncPerFacultySeconds)*time.Second)

	privacyService := privacy.NewService(db, repo, logger, cfg.ChatRetentionDays)

	// Distributed rate limiting when Redis is reachable, in-memory otherwise
	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		slog.Warn("Continuing with in-memory rate limiting", "error", err)
	}
	defer redisClient.Close()

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.SubmitPerMinute = cfg.RatingSubmitPerMinute
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig)

	// Schedule retention cleanup (runs daily)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			privacyService.RunCleanup()
		}
	}()

	compressionMiddleware := middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.RequestsPerSecond = cfg.RequestsPerSecond
	securityConfig.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	securityMiddleware := security.NewSecurityMiddleware(securityConfig, userService)

	responseCache := cache.NewCache(time.Duration(cfg.ResponseCacheTTLSeconds) * time.Second)

	r := gin.New()

	r.Use(monitoring.RequestLogger(logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(compressionMiddleware.Handler())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(securityMiddleware.SecurityHeaders)
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.ValidateContentType)
	r.Use(securityMiddleware.RateLimitByIP)

	// Cache GET responses for the public catalog only. Rankings are
	// cached inside the rankings service because their response depends
	// on who is asking, and the per-user rating lookup lives under
	// /api/ratings so it never hits this cache either.
	r.Use(responseCache.Middleware("/api/faculty"))

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		monitoring.SetDBConnectionsInUse(db.Stats().InUse)
		healthResponse := gin.H{
			"status":       "ok",
			"timestamp":    time.Now().Format(time.RFC3339),
			"database":     db.GetPoolStats(),
			"cache":        responseCache.Stats(),
			"rate_limiter": limiter.GetStats(),
		}

		if err := db.Ping(); err != nil {
			healthResponse["status"] = "degraded"
			healthResponse["database_error"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, healthResponse)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, responseCache.Stats())
	})

	r.GET("/pools/openalex", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "openalex",
			"stats": alexPool.GetStats(),
		})
	})

	r.POST("/api/auth/login", func(c *gin.Context) {
		var req types.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		user, token, err := userService.Login(req.Email, req.Password)
		if err != nil {
			if stderrors.Is(err, database.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			slog.Error("Login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.SetCookie(security.SessionCookie, token, int(database.SessionTTL.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	})

	r.POST("/api/auth/logout", securityMiddleware.RequireUser, func(c *gin.Context) {
		if token := sessionToken(c); token != "" {
			if err := userService.Logout(token); err != nil {
				slog.Error("Logout failed", "error", err)
			}
		}
		c.SetCookie(security.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	})

	r.GET("/api/auth/me", securityMiddleware.RequireUser, func(c *gin.Context) {
		c.JSON(http.StatusOK, security.CurrentUser(c))
	})

	r.PATCH("/api/users/me", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		var req types.ProfileUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		updated, err := userService.UpdateProfile(user.UserID, database.ProfileUpdate{
			Name:        req.Name,
			Picture:     req.Picture,
			Preferences: req.Preferences,
			AIInterests: req.AIInterests,
		})
		if err != nil {
			slog.Error("Profile update failed", "user_id", user.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}

		c.JSON(http.StatusOK, updated)
	})

	r.DELETE("/api/users/me", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		if err := privacyService.DeleteUserData(user.UserID); err != nil {
			slog.Error("User data deletion failed", "user_id", user.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user data"})
			return
		}

		c.SetCookie(security.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "user data deleted successfully"})
	})

	r.GET("/api/privacy/retention", func(c *gin.Context) {
		c.JSON(http.StatusOK, privacyService.GetDataRetentionInfo())
	})

	r.GET("/api/faculty", func(c *gin.Context) {
		faculty, err := repo.ListFaculty(c.Query("department"))
		if err != nil {
			slog.Error("Faculty listing failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list faculty"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"faculty": faculty, "count": len(faculty)})
	})

	r.GET("/api/faculty/:id", func(c *gin.Context) {
		fac, err := repo.FacultyByID(c.Param("id"))
		if err != nil {
			slog.Error("Faculty lookup failed", "faculty_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load faculty"})
			return
		}
		if fac == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "faculty not found"})
			return
		}
		c.JSON(http.StatusOK, fac)
	})

	r.POST("/api/faculty", securityMiddleware.RequireUser, securityMiddleware.RequireAdmin, func(c *gin.Context) {
		var req types.FacultyCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		fac := database.NewFaculty(req.Name, req.Department, req.Designation)
		fac.ImageURL = req.ImageURL
		fac.ScholarProfile = req.ScholarProfile
		fac.ResearchInterests = req.ResearchInterests

		if err := repo.CreateFaculty(fac); err != nil {
			slog.Error("Faculty creation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create faculty"})
			return
		}

		responseCache.Clear()
		c.JSON(http.StatusCreated, fac)
	})

	r.PUT("/api/faculty/:id", securityMiddleware.RequireUser, securityMiddleware.RequireAdmin, func(c *gin.Context) {
		var req types.FacultyUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		fac, err := repo.UpdateFaculty(c.Param("id"), database.FacultyUpdate{
			Name:              req.Name,
			Department:        req.Department,
			Designation:       req.Designation,
			ImageURL:          req.ImageURL,
			ScholarProfile:    req.ScholarProfile,
			ResearchInterests: req.ResearchInterests,
			Publications:      req.Publications,
		})
		if err != nil {
			slog.Error("Faculty update failed", "faculty_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update faculty"})
			return
		}
		if fac == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "faculty not found"})
			return
		}

		responseCache.Clear()
		c.JSON(http.StatusOK, fac)
	})

	r.DELETE("/api/faculty/:id", securityMiddleware.RequireUser, securityMiddleware.RequireAdmin, func(c *gin.Context) {
		deleted, err := repo.DeleteFaculty(c.Param("id"))
		if err != nil {
			slog.Error("Faculty deletion failed", "faculty_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete faculty"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "faculty not found"})
			return
		}

		responseCache.Clear()
		rankingService.Invalidate()
		c.JSON(http.StatusOK, gin.H{"message": "faculty deleted"})
	})

	r.GET("/api/faculty/:id/comments", func(c *gin.Context) {
		comments, err := repo.CommentsByFaculty(c.Param("id"))
		if err != nil {
			slog.Error("Comment listing failed", "faculty_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
	})

	r.POST("/api/faculty/:id/comments", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		var req types.CommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		comment := &database.Comment{
			CommentID:       database.NewID("comment"),
			FacultyID:       c.Param("id"),
			UserID:          user.UserID,
			UserName:        user.Name,
			UserPicture:     user.Picture,
			Content:         securityMiddleware.SanitizeInput(req.Content),
			ParentCommentID: req.ParentCommentID,
			CreatedAt:       time.Now().UTC(),
		}

		if err := repo.InsertComment(comment); err != nil {
			slog.Error("Comment creation failed", "faculty_id", comment.FacultyID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to post comment"})
			return
		}

		responseCache.Clear()
		c.JSON(http.StatusCreated, comment)
	})

	r.DELETE("/api/comments/:id", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		comment, err := repo.CommentByID(c.Param("id"))
		if err != nil {
			slog.Error("Comment lookup failed", "comment_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comment"})
			return
		}
		if comment == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		if comment.UserID != user.UserID && !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this comment"})
			return
		}

		if err := repo.DeleteComment(comment.CommentID); err != nil {
			slog.Error("Comment deletion failed", "comment_id", comment.CommentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
			return
		}

		responseCache.Clear()
		c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
	})

	r.POST("/api/faculty/:id/ratings", securityMiddleware.RequireUser, limiter.RatingSubmitMiddleware(), func(c *gin.Context) {
		user := security.CurrentUser(c)
		facultyID := c.Param("id")

		var sub ratings.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		existing, err := repo.RatingByFacultyUser(facultyID, user.UserID)
		if err != nil {
			slog.Error("Rating lookup failed", "faculty_id", facultyID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit rating"})
			return
		}
		kind := "new"
		if existing != nil {
			kind = "revision"
		}

		rating, err := ratingService.Submit(facultyID, user.UserID, sub)
		if err != nil {
			slog.Error("Rating submission failed", "faculty_id", facultyID, "user_id", user.UserID, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		monitoring.CountRatingSubmission(kind)
		rankingService.Invalidate()
		responseCache.Clear()
		c.JSON(http.StatusOK, rating)
	})

	r.GET("/api/ratings/me/:faculty_id", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		rating, err := repo.RatingByFacultyUser(c.Param("faculty_id"), user.UserID)
		if err != nil {
			slog.Error("Rating lookup failed", "faculty_id", c.Param("faculty_id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rating"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rating": rating})
	})

	r.GET("/api/rankings", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		// Rankings stay hidden from admin accounts
		if user.IsAdmin {
			c.JSON(http.StatusOK, gin.H{"rankings": []ranking.Entry{}})
			return
		}

		category := c.DefaultQuery("category", string(ratings.CategoryOverall))
		if !slices.Contains(ratings.Categories, ratings.Category(category)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rating category: " + category})
			return
		}

		entries, err := rankingService.Rankings(c.Query("department"), category,
			ranking.Method(c.DefaultQuery("method", string(ranking.MethodWeighted))))
		if err != nil {
			slog.Error("Ranking computation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute rankings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"rankings": entries})
	})

	r.GET("/api/recommendations", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		faculty, err := repo.ListFaculty("")
		if err != nil {
			slog.Error("Faculty listing failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute recommendations"})
			return
		}

		recs := recommend.Recommend(user, faculty)
		monitoring.CountRecommendations()
		c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
	})

	r.POST("/api/admin/sync/publications", securityMiddleware.RequireUser, securityMiddleware.RequireAdmin, func(c *gin.Context) {
		start := time.Now()

		tally, err := syncService.Run(c.Request.Context())
		if err != nil {
			slog.Error("Publication sync aborted", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "publication sync aborted: " + err.Error()})
			return
		}

		monitoring.ObserveSyncRun(tally.Updated, tally.Skipped, tally.Failed, time.Since(start))
		responseCache.Clear()
		c.JSON(http.StatusOK, tally)
	})

	r.POST("/api/chats", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		var req types.ChatStartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if req.ParticipantID == user.UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a chat with yourself"})
			return
		}

		other, err := repo.UserByID(req.ParticipantID)
		if err != nil {
			slog.Error("Participant lookup failed", "participant_id", req.ParticipantID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start chat"})
			return
		}
		if other == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
			return
		}

		participants := []string{user.UserID, req.ParticipantID}
		chat, err := repo.ChatByParticipants(participants)
		if err != nil {
			slog.Error("Chat lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start chat"})
			return
		}
		if chat != nil {
			c.JSON(http.StatusOK, chat)
			return
		}

		now := time.Now().UTC()
		chat = &database.Chat{
			ChatID:       database.NewID("chat"),
			Participants: participants,
			Messages:     []database.ChatMessage{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.InsertChat(chat); err != nil {
			slog.Error("Chat creation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start chat"})
			return
		}

		c.JSON(http.StatusCreated, chat)
	})

	r.GET("/api/chats", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		chats, err := repo.ChatsForUser(user.UserID)
		if err != nil {
			slog.Error("Chat listing failed", "user_id", user.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"chats": chats, "count": len(chats)})
	})

	r.GET("/api/chats/:id/messages", securityMiddleware.RequireUser, func(c *gin.Context) {
		user := security.CurrentUser(c)

		chat, err := repo.ChatByID(c.Param("id"))
		if err != nil {
			slog.Error("Chat lookup failed", "chat_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
			return
		}
		if chat == nil || !slices.Contains(chat.Participants, user.UserID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}

		messages, err := repo.ChatMessages(chat.ChatID)
		if err != nil {
			slog.Error("Chat message listing failed", "chat_id", chat.ChatID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
	})

	r.POST("/api/chats/:id/messages", securityMiddleware.RequireUser, limiter.ChatMessageMiddleware(), func(c *gin.Context) {
		user := security.CurrentUser(c)

		var req types.ChatMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		chat, err := repo.ChatByID(c.Param("id"))
		if err != nil {
			slog.Error("Chat lookup failed", "chat_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
			return
		}
		if chat == nil || !slices.Contains(chat.Participants, user.UserID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}

		// Display handle is derived from (chat, sender) so the same user
		// gets a stable pseudonym per chat without exposing identity
		handle := "anon-" + privacyService.AnonymizeData(chat.ChatID+"|"+user.UserID)[:8]

		msg := &database.ChatMessage{
			MessageID:    database.NewID("msg"),
			SenderID:     user.UserID,
			SenderHandle: handle,
			Content:      securityMiddleware.SanitizeInput(req.Content),
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.AppendChatMessage(chat.ChatID, msg); err != nil {
			slog.Error("Chat message append failed", "chat_id", chat.ChatID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
			return
		}

		c.JSON(http.StatusCreated, msg)
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alexPool.Close()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// sessionToken mirrors the middleware's token extraction for logout,
// which needs the raw token rather than the resolved user.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(security.SessionCookie); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
