package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/database/dbtest"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/routes"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// pngData sniffs as image/png.
var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type testEnv struct {
	db       *gorm.DB
	store    *chat.MemoryStore
	hub      *util.Hub
	storage  *util.ImageStorage
	jwt      *configs.TokenJWT
	app      *configs.AppConfig
	router   *gin.Engine
	uploads  string
	sequence int64
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	uploads := t.TempDir()
	storage, err := util.NewImageStorage(&configs.UploadConfig{
		Dir:          uploads,
		PublicPrefix: "/img",
		MaxFileSize:  1 << 20,
	})
	require.NoError(t, err)

	env := &testEnv{
		db:      dbtest.Open(t),
		store:   chat.NewMemoryStore(),
		hub:     util.NewHub(zap.NewNop()),
		storage: storage,
		uploads: uploads,
		jwt: &configs.TokenJWT{
			JWT:                 "test-secret",
			ExpireDuration:      time.Hour,
			AdminExpireDuration: time.Hour,
			GracePeriod:         time.Hour,
		},
		app: &configs.AppConfig{VerifyCode: "1234"},
	}

	env.router = gin.New()
	routes.SetupRoutes(env.router, &routes.Deps{
		DB:        env.db,
		Hub:       env.hub,
		ChatStore: env.store,
		Notifier:  chat.NewNotifier(env.store, env.hub, zap.NewNop()),
		Storage:   env.storage,
		JWT:       env.jwt,
		App:       env.app,
		Log:       zap.NewNop(),
	})
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) db.User {
	t.Helper()
	n := atomic.AddInt64(&e.sequence, 1)
	user := db.User{
		PhoneNumber:  fmt.Sprintf("1390000%04d", n),
		UserName:     name,
		RealName:     name + " Real",
		IDCardNumber: fmt.Sprintf("ID%016d", n),
		UserAvatar:   constants.DefaultUserAvatar,
		Location:     "Chengdu",
		BirthDate:    "1995-05-05",
	}
	require.NoError(t, e.db.Create(&user).Error)
	require.NoError(t, e.db.Create(&db.Consumer{ConsumerID: user.ID}).Error)
	return user
}

func (e *testEnv) approveProvider(t *testing.T, userID uint) {
	t.Helper()
	require.NoError(t, e.db.Create(&db.Provider{ProviderID: userID, ProviderRole: constants.ServicePartTime}).Error)
	now := time.Now()
	require.NoError(t, e.db.Create(&db.Verification{
		ProviderID:         userID,
		ServiceCategory:    constants.ServicePartTime,
		VerificationStatus: constants.VerificationApproved,
		SubmissionTime:     now,
		PassingTime:        &now,
	}).Error)
}

func (e *testEnv) createEvent(t *testing.T, creatorID uint, eventType constants.EventType, title string, photos ...string) db.Event {
	t.Helper()
	event := db.Event{
		CreatorID:     creatorID,
		EventTitle:    title,
		EventType:     eventType,
		EventCategory: "general",
		Photos:        photos,
		Location:      "Chengdu",
		Price:         30,
		EventDetails:  title + " details",
	}
	require.NoError(t, e.db.Create(&event).Error)
	return event
}

func (e *testEnv) createStaff(t *testing.T, name, password string, role constants.UserRole) db.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	staff := db.Staff{UserName: name, Password: string(hash), Role: role}
	require.NoError(t, e.db.Create(&staff).Error)
	return staff
}

func (e *testEnv) token(t *testing.T, user db.User) string {
	t.Helper()
	token, err := util.GenerateUserToken(e.jwt, user.ID, user.UserName)
	require.NoError(t, err)
	return token
}

func (e *testEnv) staffToken(t *testing.T, staff db.Staff) string {
	t.Helper()
	token, err := util.GenerateJWTToken(e.jwt, staff.ID, staff.UserName, staff.Role, time.Hour)
	require.NoError(t, err)
	return token
}

// writeUpload puts a file into the upload directory and returns its public path.
func (e *testEnv) writeUpload(t *testing.T, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(e.uploads+"/"+name, pngData, 0o644))
	return "/img/" + name
}

func (e *testEnv) uploadExists(publicPath string) bool {
	full, err := e.storage.Resolve(publicPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
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
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	field, name string
	data        []byte
}

func (e *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type apiResponse struct {
	Success bool                      `json:"success"`
	Code    int                       `json:"code"`
	Message string                    `json:"message"`
	Error   string                    `json:"error"`
	Fields  []util.FieldErrorResponse `json:"fields"`
	Data    json.RawMessage           `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) apiResponse {
	t.Helper()
	resp := decode(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, out), string(resp.Data))
	return resp
}

// systemMessages returns the notification texts stored for a user.
func (e *testEnv) systemMessages(t *testing.T, userID uint) []string {
	t.Helper()
	msgs, _, err := e.store.History(testContext(t), chat.SystemRoomID(userID), 1, constants.MaxHistoryPageSize)
	require.NoError(t, err)
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	return texts
}

func idPath(format string, id uint) string {
	return fmt.Sprintf(format, id)
}

// testContext mirrors testing.T.Context (Go 1.24+): the context is
// canceled just before Cleanup-registered functions run.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
