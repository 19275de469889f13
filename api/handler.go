package api

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicegate/auth/session"
	"github.com/skillsenselab/voicegate/embedding"
	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/language"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/observability"
	"github.com/skillsenselab/voicegate/server"
	"github.com/skillsenselab/voicegate/server/middleware"
	"github.com/skillsenselab/voicegate/speaker"
	"github.com/skillsenselab/voicegate/validation"
)

// audioField is the multipart form field carrying the recorded audio.
const audioField = "audio_data"

// Handler serves the enrollment and login API.
type Handler struct {
	registrar *speaker.Registrar
	matcher   *speaker.Matcher
	store     *speaker.Store
	extractor embedding.Extractor
	sessions  *session.Service
	metrics   *observability.VoiceMetrics
	log       *logger.Logger
}

// NewHandler creates the API handler. metrics may be nil, in which case
// metric recording is skipped.
func NewHandler(
	registrar *speaker.Registrar,
	matcher *speaker.Matcher,
	store *speaker.Store,
	extractor embedding.Extractor,
	sessions *session.Service,
	metrics *observability.VoiceMetrics,
	log *logger.Logger,
) *Handler {
	return &Handler{
		registrar: registrar,
		matcher:   matcher,
		store:     store,
		extractor: extractor,
		sessions:  sessions,
		metrics:   metrics,
		log:       log.WithComponent("api"),
	}
}

// RegisterRoutes mounts the API under /api on the given engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	api.POST("/enroll", h.Enroll)
	api.POST("/login", h.Login)
	api.GET("/session", middleware.SessionAuth(h.sessions), h.Session)
	api.GET("/languages", h.Languages)
}

// Enroll handles POST /api/enroll: multipart {username, language, audio_data}.
func (h *Handler) Enroll(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "api.enroll")
	defer span.End()

	username := c.PostForm("username")
	lang := c.PostForm("language")

	v := validation.New().
		Required("username", username).
		MaxLength("username", username, 64).
		Required("language", lang).
		OneOf("language", lang, language.Codes())
	if appErr := v.Validate(); appErr != nil {
		h.recordEnroll(c, "rejected", lang)
		server.RespondWithError(c, appErr)
		return
	}

	audio, err := h.readAudio(c)
	if err != nil {
		h.recordEnroll(c, "rejected", lang)
		server.RespondWithError(c, err)
		return
	}

	emb, err := h.extract(ctx, audio)
	if err != nil {
		h.recordEnroll(c, "extract_failed", lang)
		server.RespondWithError(c, err)
		return
	}

	normalized, err := h.registrar.Enroll(ctx, username, lang, emb)
	if err != nil {
		h.recordEnroll(c, "rejected", lang)
		server.RespondWithError(c, err)
		return
	}

	h.recordEnroll(c, "enrolled", lang)
	h.log.Info("Enrollment completed", logger.Fields(
		logger.FieldUsername, normalized,
		"language", lang,
	))
	server.RespondCreated(c, EnrollResponse{Username: normalized, Language: lang})
}

// Login handles POST /api/login: multipart {audio_data}. On acceptance the
// response carries a signed session token.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "api.login")
	defer span.End()

	audio, err := h.readAudio(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	emb, err := h.extract(ctx, audio)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	enrolled, err := h.store.Enrolled(ctx)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	match, err := h.matcher.Identify(emb, enrolled)
	if err != nil {
		dist := -1.0
		if apperrors.CodeOf(err) == apperrors.ErrCodeNotRecognized {
			dist = match.Distance
		}
		h.recordLogin(c, loginOutcome(err), dist)
		server.RespondWithError(c, err)
		return
	}

	lang, err := h.store.Language(ctx, match.Username)
	if err != nil {
		// enrolled entry came from the registry moments ago
		h.log.Warn("Language lookup failed after match", logger.ErrorFields("login", err))
		lang = ""
	}

	token, err := h.sessions.Issue(match.Username, lang)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	h.recordLogin(c, "accepted", match.Distance)
	h.log.Info("Login accepted", logger.Fields(
		logger.FieldUsername, match.Username,
		logger.FieldDistance, match.Distance,
	))
	server.RespondOK(c, LoginResponse{
		Username:  match.Username,
		Language:  lang,
		Distance:  match.Distance,
		Token:     token,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
	})
}

// Session handles GET /api/session for an authenticated request.
func (h *Handler) Session(c *gin.Context) {
	claims, ok := middleware.SessionClaims(c)
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	var expiresAt int64
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
	}
	server.RespondOK(c, SessionResponse{
		Username:  claims.Username,
		Language:  claims.Language,
		ExpiresAt: expiresAt,
	})
}

// Languages handles GET /api/languages.
func (h *Handler) Languages(c *gin.Context) {
	out := make([]LanguageResponse, 0, len(language.Supported))
	for _, l := range language.Supported {
		out = append(out, LanguageResponse{
			Code:          l.Code,
			Name:          l.Name,
			EnrollPrompts: l.EnrollPrompts,
			LoginPrompt:   l.LoginPrompt,
		})
	}
	server.RespondOK(c, out)
}

// readAudio extracts the uploaded audio bytes from the multipart form.
func (h *Handler) readAudio(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile(audioField)
	if err != nil {
		return nil, apperrors.MissingField(audioField)
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperrors.InvalidInput(audioField, "could not open uploaded file")
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.InvalidInput(audioField, "could not read uploaded file")
	}
	if len(audio) == 0 {
		return nil, apperrors.InvalidInput(audioField, "uploaded file is empty")
	}
	return audio, nil
}

// extract runs the embedding extractor and records its duration.
func (h *Handler) extract(ctx context.Context, audio []byte) (embedding.Embedding, error) {
	start := time.Now()
	emb, err := h.extractor.Extract(ctx, audio)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if h.metrics != nil {
		h.metrics.RecordExtract(ctx, status, time.Since(start))
	}
	return emb, err
}

func (h *Handler) recordEnroll(c *gin.Context, outcome, lang string) {
	if h.metrics != nil {
		h.metrics.RecordEnroll(c.Request.Context(), outcome, lang)
	}
}

func (h *Handler) recordLogin(c *gin.Context, outcome string, distance float64) {
	if h.metrics != nil {
		h.metrics.RecordLogin(c.Request.Context(), outcome, distance)
	}
}

// loginOutcome maps an identify error to a metric outcome label.
func loginOutcome(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeNotRecognized:
		return "rejected"
	case apperrors.ErrCodeNoEnrolledUsers:
		return "no_enrolled_users"
	case apperrors.ErrCodeInvalidInput:
		return "invalid_input"
	default:
		return "error"
	}
}
