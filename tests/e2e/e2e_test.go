package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studynotes/internal/database"
	"studynotes/internal/middleware"
	"studynotes/internal/modules/auth"
	"studynotes/internal/modules/dashboard"
	"studynotes/internal/modules/notes"
	"studynotes/internal/modules/search"
	"studynotes/internal/modules/subjects"
	"studynotes/internal/pkg/blobstore"
	jwtsvc "studynotes/internal/pkg/jwt"
	"studynotes/internal/repository"
)

type E2ETestSuite struct {
	router  *gin.Engine
	blobDir string
}

type TestResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.Migrate(db))

	blobDir := t.TempDir()
	blobs, err := blobstore.New(blobDir)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	j := jwtsvc.New("e2e-test-secret", time.Hour)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	subjectsHandler := subjects.NewHandler(subjects.NewService(subjectRepo, unitRepo, blobs))
	notesHandler := notes.NewHandler(notes.NewService(noteRepo, blobs))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(subjectRepo, unitRepo, noteRepo))
	searchHandler := search.NewHandler(search.NewService(noteRepo, subjectRepo, unitRepo))

	r := gin.New()
	r.MaxMultipartMemory = notes.MaxUploadSize
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)
	protected := v1.Group("/")
	protected.Use(middleware.Auth(j))
	authHandler.RegisterProtectedRoutes(protected)
	dashboardHandler.RegisterRoutes(protected)
	subjectsHandler.RegisterRoutes(protected)
	notesHandler.RegisterRoutes(protected)
	searchHandler.RegisterRoutes(protected)

	return &E2ETestSuite{router: r, blobDir: blobDir}
}

func (s *E2ETestSuite) doJSON(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	}
	return w, &resp
}

func (s *E2ETestSuite) uploadNote(t *testing.T, token, title, subjectID, unitID, filename string, content []byte) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("description", "uploaded in e2e"))
	if subjectID != "" {
		require.NoError(t, w.WriteField("subject_id", subjectID))
	}
	if unitID != "" {
		require.NoError(t, w.WriteField("unit_id", unitID))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp TestResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec, &resp
}

func (s *E2ETestSuite) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	w, _ := s.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            username + "@example.com",
		"username":         username,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "signup failed: %s", w.Body.String())

	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *E2ETestSuite) blobNames(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(s.blobDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSignupValidation(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            "a@example.com",
		"username":         "alice",
		"password":         "secret123",
		"confirm_password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PASSWORD_MISMATCH", resp.Error.Code)

	s.registerAndLogin(t, "alice")

	w, resp = s.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            "other@example.com",
		"username":         "alice",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USERNAME_EXISTS", resp.Error.Code)

	w, resp = s.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            "alice@example.com",
		"username":         "alice2",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)

	w, resp = s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestAuthRequired(t *testing.T) {
	s := setupTestSuite(t)

	w, _ := s.doJSON(t, http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.doJSON(t, http.MethodGet, "/api/v1/notes", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNoteLifecycle(t *testing.T) {
	s := setupTestSuite(t)
	token := s.registerAndLogin(t, "alice")

	// Create subject and unit.
	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/subjects", token, gin.H{
		"name":        "Algorithms",
		"description": "CS course",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var subject struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))

	w, resp = s.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/subjects/%d/units", subject.ID), token, gin.H{
		"name": "Sorting",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var unit struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &unit))

	// Units JSON for the upload form.
	w, resp = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d/units", subject.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &options))
	require.Len(t, options, 1)
	assert.Equal(t, "Sorting", options[0].Name)

	subjectID := fmt.Sprint(subject.ID)
	unitID := fmt.Sprint(unit.ID)
	content := []byte("hello from e2e\nsecond line")

	// Upload; duplicate name gets the numeric suffix.
	w, resp = s.uploadNote(t, token, "Quicksort notes", subjectID, unitID, "report.txt", content)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var created struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
		FileType string `json:"file_type"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "report.txt", created.Filename)
	assert.Equal(t, "txt", created.FileType)

	w, resp = s.uploadNote(t, token, "Mergesort notes", subjectID, unitID, "report.txt", []byte("other content"))
	require.Equal(t, http.StatusCreated, w.Code)
	var second struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &second))
	assert.Equal(t, "report_1.txt", second.Filename)
	assert.ElementsMatch(t, []string{"report.txt", "report_1.txt"}, s.blobNames(t))

	// Validation failures leave no trace.
	w, resp = s.uploadNote(t, token, "Bad", subjectID, unitID, "malware.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DISALLOWED_TYPE", resp.Error.Code)

	w, resp = s.uploadNote(t, token, "Bad", subjectID, "", "report.txt", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_ASSOCIATION", resp.Error.Code)

	w, resp = s.uploadNote(t, token, "Bad", subjectID, unitID, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILE", resp.Error.Code)

	assert.Len(t, s.blobNames(t), 2)

	// Listing: newest first, with parent names.
	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		SubjectName string `json:"subject_name"`
		UnitName    string `json:"unit_name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Mergesort notes", listed[0].Title)
	assert.Equal(t, "Algorithms", listed[0].SubjectName)
	assert.Equal(t, "Sorting", listed[0].UnitName)

	// View: txt preview is inlined.
	w, resp = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/notes/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Title   string  `json:"title"`
		Content *string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	require.NotNil(t, detail.Content)
	assert.Equal(t, string(content), *detail.Content)

	// Download: byte-identical round trip.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/notes/%d/download", created.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.txt")

	// Dashboard aggregates.
	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		TotalSubjects int64 `json:"total_subjects"`
		TotalUnits    int64 `json:"total_units"`
		TotalNotes    int64 `json:"total_notes"`
		RecentNotes   []struct {
			Title string `json:"title"`
		} `json:"recent_notes"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.EqualValues(t, 1, summary.TotalSubjects)
	assert.EqualValues(t, 1, summary.TotalUnits)
	assert.EqualValues(t, 2, summary.TotalNotes)
	require.NotEmpty(t, summary.RecentNotes)
	assert.Equal(t, "Mergesort notes", summary.RecentNotes[0].Title)

	// Delete is idempotent in effect: the second call 404s.
	w, _ = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", second.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"report.txt"}, s.blobNames(t))

	w, resp = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", second.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.ElementsMatch(t, []string{"report.txt"}, s.blobNames(t))
}

func TestSearch(t *testing.T) {
	s := setupTestSuite(t)
	token := s.registerAndLogin(t, "alice")

	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/subjects", token, gin.H{"name": "Algorithms"})
	require.Equal(t, http.StatusCreated, w.Code)
	var subject struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))

	w, _ = s.doJSON(t, http.MethodPost, "/api/v1/subjects", token, gin.H{"name": "Chemistry"})
	require.Equal(t, http.StatusCreated, w.Code)

	type results struct {
		Notes    []json.RawMessage `json:"notes"`
		Subjects []struct {
			Name string `json:"name"`
		} `json:"subjects"`
		Units []json.RawMessage `json:"units"`
	}

	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/search?q=alg", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var r results
	require.NoError(t, json.Unmarshal(resp.Data, &r))
	require.Len(t, r.Subjects, 1)
	assert.Equal(t, "Algorithms", r.Subjects[0].Name)

	// Empty query: three empty lists, not an error.
	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/search?q=", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &r))
	assert.Empty(t, r.Notes)
	assert.Empty(t, r.Subjects)
	assert.Empty(t, r.Units)
}

func TestCrossUserIsolation(t *testing.T) {
	s := setupTestSuite(t)
	aliceToken := s.registerAndLogin(t, "alice")
	bobToken := s.registerAndLogin(t, "bob")

	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/subjects", aliceToken, gin.H{"name": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	var subject struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))

	w, resp = s.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/subjects/%d/units", subject.ID), aliceToken, gin.H{"name": "Secrets"})
	require.Equal(t, http.StatusCreated, w.Code)
	var unit struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &unit))

	w, resp = s.uploadNote(t, aliceToken, "Hidden", fmt.Sprint(subject.ID), fmt.Sprint(unit.ID), "diary.txt", []byte("secret"))
	require.Equal(t, http.StatusCreated, w.Code)
	var note struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &note))

	// Every access path 404s for bob, indistinguishable from missing.
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d", subject.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/v1/subjects/%d", subject.ID)},
		{http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d/units", subject.ID)},
		{http.MethodGet, fmt.Sprintf("/api/v1/notes/%d", note.ID)},
		{http.MethodGet, fmt.Sprintf("/api/v1/notes/%d/download", note.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", note.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/v1/units/%d", unit.ID)},
	}
	for _, p := range paths {
		w, _ := s.doJSON(t, p.method, p.path, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", p.method, p.path)
	}

	// Bob cannot attach notes to alice's unit either.
	w, resp = s.uploadNote(t, bobToken, "Sneaky", fmt.Sprint(subject.ID), fmt.Sprint(unit.ID), "sneaky.txt", []byte("x"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	// Alice's data is intact.
	w, _ = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/notes/%d", note.ID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCascadeDeletes(t *testing.T) {
	s := setupTestSuite(t)
	token := s.registerAndLogin(t, "alice")

	w, resp := s.doJSON(t, http.MethodPost, "/api/v1/subjects", token, gin.H{"name": "History"})
	require.Equal(t, http.StatusCreated, w.Code)
	var subject struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))

	makeUnit := func(name string) int64 {
		w, resp := s.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/subjects/%d/units", subject.ID), token, gin.H{"name": name})
		require.Equal(t, http.StatusCreated, w.Code)
		var unit struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &unit))
		return unit.ID
	}

	antiquity := makeUnit("Antiquity")
	middleAges := makeUnit("Middle Ages")

	w, _ = s.uploadNote(t, token, "Rome", fmt.Sprint(subject.ID), fmt.Sprint(antiquity), "rome.txt", []byte("SPQR"))
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.uploadNote(t, token, "Feudalism", fmt.Sprint(subject.ID), fmt.Sprint(middleAges), "feudalism.txt", []byte("fiefs"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, s.blobNames(t), 2)

	// Unit cascade removes its note and file, sparing the sibling.
	w, _ = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/units/%d", antiquity), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"feudalism.txt"}, s.blobNames(t))

	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Feudalism", listed[0].Title)

	// Subject cascade clears everything that is left.
	w, _ = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/subjects/%d", subject.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.blobNames(t))

	w, resp = s.doJSON(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		TotalSubjects int64 `json:"total_subjects"`
		TotalUnits    int64 `json:"total_units"`
		TotalNotes    int64 `json:"total_notes"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Zero(t, summary.TotalSubjects)
	assert.Zero(t, summary.TotalUnits)
	assert.Zero(t, summary.TotalNotes)

	// Deleting again: the subject is gone.
	w, _ = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/subjects/%d", subject.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
