package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/datastorylab/showtell/apps/api/echo"
	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
	emailsvc "github.com/datastorylab/showtell/services/email"
	inmemrepos "github.com/datastorylab/showtell/storage/database/inmem"
	testutil "github.com/datastorylab/showtell/tests"
)

var (
	conf *core.Config
	app  Server
	repo story.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// resetApp rebuilds the app with fresh in-memory state.
func resetApp(t *testing.T) {
	t.Helper()

	conf = testutil.NewConfig()
	repo = inmemrepos.NewStoryRepository()

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	storySvc := story.NewService(
		repo,
		&story.StubClassifier{Sentences: testutil.Sentences()},
		mailSvc,
		story.NewWeekGate(conf.CurrentWeek),
		conf,
		testutil.NewLogger(t),
	)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NewLogger(t),
		StorySvc:       storySvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// getToken unlocks the admin endpoints with the configured key.
func getToken(t *testing.T) string {
	t.Helper()

	req, rec := newRequest(http.MethodPost, "/v1/admin/unlock", marshallObj(t, UnlockRequest{Key: conf.AdminKey}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getToken(): code = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp UnlockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return resp.Token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	if objs == nil {
		objs = []interface{}{} // handlers return [], never null
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
