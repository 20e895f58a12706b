package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"race-challenge-system/models"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "challenges.sqlite")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Challenge{}, &models.ChallengeCompletion{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var errStoreDown = errors.New("store unavailable")

type storedObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// memStore is an in-memory ObjectStore with switchable failures.
type memStore struct {
	mu         sync.Mutex
	objects    map[string]storedObject
	failPut    bool
	failCopy   bool
	failDelete bool
	deleted    []string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]storedObject)}
}

func (s *memStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errStoreDown
	}
	s.objects[key] = storedObject{data: append([]byte(nil), body...), contentType: contentType, modified: time.Now()}
	return nil
}

func (s *memStore) Copy(_ context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCopy {
		return errStoreDown
	}
	obj, ok := s.objects[srcKey]
	if !ok {
		return errors.New("no such key: " + srcKey)
	}
	obj.modified = time.Now()
	s.objects[dstKey] = obj
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errStoreDown
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) ListOlderThan(_ context.Context, prefix string, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) && obj.modified.Before(cutoff) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) PublicURL(key string) string {
	return "https://cdn.test/challenge-prints/" + key
}

func (s *memStore) KeyFromURL(publicURL string) (string, bool) {
	key := strings.TrimPrefix(publicURL, "https://cdn.test/challenge-prints/")
	return key, key != publicURL
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *memStore) age(key string, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.objects[key]
	obj.modified = obj.modified.Add(-by)
	s.objects[key] = obj
}

func seedChallenge(t *testing.T, db *gorm.DB, slug string, active bool) models.Challenge {
	t.Helper()
	ch := models.Challenge{
		ID:       "ch-" + slug,
		Name:     "Desafio " + slug,
		Slug:     slug,
		IsActive: active,
	}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	return ch
}

func seedCompletion(t *testing.T, db *gorm.DB, c models.ChallengeCompletion) models.ChallengeCompletion {
	t.Helper()
	if c.ChallengeSlug == "" {
		c.ChallengeSlug = "virtual-run"
		c.ChallengeName = "Virtual Run"
	}
	if c.StravaScreenshotURL == "" {
		c.StravaScreenshotURL = "https://cdn.test/challenge-prints/" + c.ChallengeSlug + "/" + c.ID + ".png"
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed completion: %v", err)
	}
	return c
}

// multipartRequest builds a form POST; a nil file skips the screenshot part.
func multipartRequest(t *testing.T, target string, fields map[string]string, filename, contentType string, file []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="screenshot"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(data)
}

func buildScreenshot(t *testing.T) *multipart.FileHeader {
	t.Helper()
	req := multipartRequest(t, "/", nil, "print.jpg", "image/jpeg", jpegHeader)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["screenshot"][0]
}

func httptestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
