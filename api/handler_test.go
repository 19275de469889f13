package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicegate/auth/session"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/speaker"
	"github.com/skillsenselab/voicegate/storage/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeExtractor maps each audio payload to a fixed embedding, so tests can
// choose voices that are near or far from each other.
type fakeExtractor struct {
	voices map[string]embedding.Embedding
}

func (f *fakeExtractor) Name() string                          { return "fake" }
func (f *fakeExtractor) IsAvailable(_ context.Context) bool    { return true }
func (f *fakeExtractor) Extract(_ context.Context, audio []byte) (embedding.Embedding, error) {
	emb, ok := f.voices[string(audio)]
	if !ok {
		// unknown audio maps to a deterministic but unmatched direction
		emb = make(embedding.Embedding, embedding.Dim)
		emb[embedding.Dim-1] = 1
	}
	return emb, nil
}

func voiceVector(idx int) embedding.Embedding {
	e := make(embedding.Embedding, embedding.Dim)
	e[idx] = 1
	return e
}

func newTestAPI(t *testing.T) (*gin.Engine, *fakeExtractor) {
	t.Helper()

	backend, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	log := logger.NewDefault("test")
	store := speaker.NewStore(backend, log)
	sessions, err := session.NewService(&session.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("create session service: %v", err)
	}

	extractor := &fakeExtractor{voices: map[string]embedding.Embedding{
		"voice-alice": voiceVector(0),
		"voice-bob":   voiceVector(1),
	}}

	handler := NewHandler(
		speaker.NewRegistrar(store, log),
		speaker.NewMatcher(0.4, log),
		store,
		extractor,
		sessions,
		nil,
		log,
	)

	engine := gin.New()
	handler.RegisterRoutes(engine)
	return engine, extractor
}

// multipartBody builds a multipart form with the given fields and an
// audio_data file part.
func multipartBody(t *testing.T, fields map[string]string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if audio != nil {
		fw, err := w.CreateFormFile(audioField, "recording.wav")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(audio); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func doEnroll(t *testing.T, engine *gin.Engine, username, lang string, audio []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, map[string]string{
		"username": username,
		"language": lang,
	}, audio)
	req := httptest.NewRequest(http.MethodPost, "/api/enroll", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doLogin(t *testing.T, engine *gin.Engine, audio []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, nil, audio)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, w.Body.String())
	}
	return resp.Error.Code
}

func TestEnrollThenLogin_SameVoice(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := doEnroll(t, engine, "Alice", "en", []byte("voice-alice"))
	if w.Code != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var enrollResp struct {
		Data EnrollResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &enrollResp); err != nil {
		t.Fatalf("decode enroll response: %v", err)
	}
	if enrollResp.Data.Username != "alice" {
		t.Errorf("expected normalized username alice, got %q", enrollResp.Data.Username)
	}

	w = doLogin(t, engine, []byte("voice-alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Data.Username != "alice" {
		t.Errorf("expected alice, got %q", loginResp.Data.Username)
	}
	if loginResp.Data.Distance > 1e-9 {
		t.Errorf("same voice must have distance 0, got %g", loginResp.Data.Distance)
	}
	if loginResp.Data.Token == "" {
		t.Error("expected a session token")
	}
	if loginResp.Data.Language != "en" {
		t.Errorf("expected enrollment language en, got %q", loginResp.Data.Language)
	}
}

func TestLogin_DifferentVoiceRejected(t *testing.T) {
	engine, _ := newTestAPI(t)

	if w := doEnroll(t, engine, "alice", "en", []byte("voice-alice")); w.Code != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d", w.Code)
	}

	w := doLogin(t, engine, []byte("voice-bob"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "NOT_RECOGNIZED" {
		t.Errorf("expected NOT_RECOGNIZED, got %s", code)
	}
}

func TestLogin_NoEnrolledUsers(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := doLogin(t, engine, []byte("voice-alice"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "NO_ENROLLED_USERS" {
		t.Errorf("expected NO_ENROLLED_USERS, got %s", code)
	}
}

func TestEnroll_DuplicateUsername(t *testing.T) {
	engine, _ := newTestAPI(t)

	if w := doEnroll(t, engine, "alice", "en", []byte("voice-alice")); w.Code != http.StatusCreated {
		t.Fatalf("first enroll: expected 201, got %d", w.Code)
	}

	w := doEnroll(t, engine, "alice", "hi", []byte("voice-bob"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "ALREADY_EXISTS" {
		t.Errorf("expected ALREADY_EXISTS, got %s", code)
	}

	// first enrollment still wins the login
	w = doLogin(t, engine, []byte("voice-alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("login after duplicate attempt: expected 200, got %d", w.Code)
	}
}

func TestEnroll_Validation(t *testing.T) {
	engine, _ := newTestAPI(t)

	tests := []struct {
		name     string
		username string
		language string
		audio    []byte
	}{
		{"missing username", "", "en", []byte("voice-alice")},
		{"unsupported language", "alice", "fr", []byte("voice-alice")},
		{"missing audio", "alice", "en", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doEnroll(t, engine, tt.username, tt.language, tt.audio)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestSession_RoundTrip(t *testing.T) {
	engine, _ := newTestAPI(t)

	if w := doEnroll(t, engine, "alice", "ta", []byte("voice-alice")); w.Code != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d", w.Code)
	}
	w := doLogin(t, engine, []byte("voice-alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	var loginResp struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Data.Token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("session: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sessResp struct {
		Data SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sessResp); err != nil {
		t.Fatal(err)
	}
	if sessResp.Data.Username != "alice" || sessResp.Data.Language != "ta" {
		t.Errorf("unexpected session identity: %+v", sessResp.Data)
	}
	if sessResp.Data.ExpiresAt == 0 {
		t.Error("expected an expiry timestamp")
	}
}

func TestSession_WithoutToken(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLanguages(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []LanguageResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(resp.Data))
	}
	codes := map[string]bool{}
	for _, l := range resp.Data {
		codes[l.Code] = true
		if len(l.EnrollPrompts) != 2 {
			t.Errorf("language %s: expected 2 enroll prompts, got %d", l.Code, len(l.EnrollPrompts))
		}
		if l.LoginPrompt == "" {
			t.Errorf("language %s: expected a login prompt", l.Code)
		}
	}
	for _, c := range []string{"en", "hi", "ta"} {
		if !codes[c] {
			t.Errorf("expected language %s to be listed", c)
		}
	}
}
