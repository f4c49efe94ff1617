package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thehopecrystal/verify-properties/internal/handlers"
	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/metrics"
	"github.com/thehopecrystal/verify-properties/internal/models"
	"github.com/thehopecrystal/verify-properties/internal/notify"
	"github.com/thehopecrystal/verify-properties/internal/records"
	"github.com/thehopecrystal/verify-properties/internal/storage"
	"github.com/thehopecrystal/verify-properties/internal/storage/memory"
)

var testTokens = &handlers.Tokens{Key: []byte(`test-key`), TTL: time.Hour}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testServer struct {
	handler       http.Handler
	notifications *notify.Recorder
}

func newTestServer(t *testing.T, s storage.Storage) *testServer {
	t.Helper()

	rec := &notify.Recorder{}
	m := metrics.New()
	sink := notify.Multi{rec, m}
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}

	ids := identity.New(s, sink, identity.WithHashCost(bcrypt.MinCost))
	store := records.New(s, sink, records.WithClock(c.Now))

	return &testServer{handler: New(ids, store, testTokens, m), notifications: rec}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = bytes.NewBuffer(nil)
	case []byte:
		reader = bytes.NewBuffer(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != `` {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// PerformLogin logs in and returns the bearer token.
func (ts *testServer) PerformLogin(t *testing.T, email, password string) string {
	t.Helper()
	rr := ts.do(t, `POST`, `/login`, ``, handlers.LoginInput{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[models.AuthorizationToken](t, rr).Token
}

func (ts *testServer) PerformRegister(t *testing.T, fullName, email, password string) models.AuthorizationToken {
	t.Helper()
	rr := ts.do(t, `POST`, `/register`, ``, handlers.RegisterInput{FullName: fullName, Email: email, Password: password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[models.AuthorizationToken](t, rr)
}

func landProperty() records.PropertyFields {
	return records.PropertyFields{
		Title:     `Plot 12`,
		Type:      models.TypeLand,
		Location:  `Springfield`,
		Documents: []string{`deed.pdf`},
	}
}

func TestRegisterHandler(t *testing.T) {
	ts := newTestServer(t, memory.New())
	ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`)

	testCases := []struct {
		name         string
		body         any
		expectedCode int
		message      string
	}{
		{
			name:         "Successful registration",
			body:         handlers.RegisterInput{FullName: `Bob`, Email: `bob@x.com`, Password: `pw2`},
			expectedCode: http.StatusOK,
			message:      `Registration successful`,
		},
		{
			name:         "Duplicate email",
			body:         handlers.RegisterInput{FullName: `Alice`, Email: `alice@x.com`, Password: `other`},
			expectedCode: http.StatusConflict,
			message:      `User with this email already exists`,
		},
		{
			name:         "Missing fields",
			body:         handlers.RegisterInput{Email: `carol@x.com`},
			expectedCode: http.StatusBadRequest,
			message:      `Full name, email and password are required`,
		},
		{
			name:         "JSON Unmarshal error",
			body:         []byte(`{"invalidJson"}`),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Password longer than 72 bytes",
			body:         handlers.RegisterInput{FullName: `Carol`, Email: `carol@x.com`, Password: strings.Repeat(`p`, 73)},
			expectedCode: http.StatusOK,
			message:      `Registration successful`,
		},
		{
			name:         "Body too large",
			body:         []byte(`{"fullName":"` + strings.Repeat(`a`, 1<<20) + `"}`),
			expectedCode: http.StatusRequestEntityTooLarge,
		},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.name), func(t *testing.T) {
			rr := ts.do(t, `POST`, `/register`, ``, tc.body)
			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.message != `` {
				last, ok := ts.notifications.Last()
				require.True(t, ok)
				assert.Equal(t, tc.message, last.Message)
			}

			if tc.expectedCode == http.StatusOK {
				token := decode[models.AuthorizationToken](t, rr)
				assert.NotEmpty(t, token.Token)
				assert.Equal(t, models.RoleUser, token.Account.Role)
				assert.Empty(t, token.Account.Password)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	ts := newTestServer(t, memory.New())
	ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`)

	testCases := []struct {
		name         string
		input        handlers.LoginInput
		expectedCode int
		expectedRole models.Role
	}{
		{name: "Registered user", input: handlers.LoginInput{Email: `alice@x.com`, Password: `pw1`}, expectedCode: http.StatusOK, expectedRole: models.RoleUser},
		{name: "Bootstrap admin", input: handlers.LoginInput{Email: `admin`, Password: `admin12.3`}, expectedCode: http.StatusOK, expectedRole: models.RoleAdmin},
		{name: "Wrong password", input: handlers.LoginInput{Email: `alice@x.com`, Password: `nope`}, expectedCode: http.StatusUnauthorized},
		{name: "Unknown email", input: handlers.LoginInput{Email: `bob@x.com`, Password: `pw1`}, expectedCode: http.StatusUnauthorized},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.name), func(t *testing.T) {
			rr := ts.do(t, `POST`, `/login`, ``, tc.input)
			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode == http.StatusOK {
				token := decode[models.AuthorizationToken](t, rr)
				assert.Equal(t, tc.expectedRole, token.Account.Role)

				session := ts.do(t, `GET`, `/session`, token.Token, nil)
				assert.Equal(t, http.StatusOK, session.Code)
				assert.Equal(t, tc.expectedRole, decode[models.Account](t, session).Role)
			}
		})
	}
}

func TestAuthorizationMiddleware(t *testing.T) {
	ts := newTestServer(t, memory.New())
	valid := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token

	foreign := &handlers.Tokens{Key: []byte(`another-key`), TTL: time.Hour}
	forged, err := foreign.Issue(identity.Session{Id: `s`, Account: models.Account{Id: `x`, Role: models.RoleAdmin}})
	require.NoError(t, err)

	expired := &handlers.Tokens{Key: testTokens.Key, TTL: -time.Minute}
	stale, err := expired.Issue(identity.Session{Id: `s`, Account: models.Account{Id: `x`}})
	require.NoError(t, err)

	unknownSession, err := testTokens.Issue(identity.Session{Id: `missing`, Account: models.Account{Id: `x`}})
	require.NoError(t, err)

	testCases := []struct {
		name         string
		header       string
		expectedCode int
	}{
		{name: "Valid token", header: "Bearer " + valid, expectedCode: http.StatusOK},
		{name: "No header", header: ``, expectedCode: http.StatusUnauthorized},
		{name: "Missing Bearer prefix", header: valid, expectedCode: http.StatusUnauthorized},
		{name: "Garbage token", header: "Bearer abc.def.ghi", expectedCode: http.StatusUnauthorized},
		{name: "Foreign signing key", header: "Bearer " + forged, expectedCode: http.StatusUnauthorized},
		{name: "Expired token", header: "Bearer " + stale, expectedCode: http.StatusUnauthorized},
		{name: "Unknown session", header: "Bearer " + unknownSession, expectedCode: http.StatusUnauthorized},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.name), func(t *testing.T) {
			req, err := http.NewRequest(`GET`, `/properties`, nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", tc.header)

			rr := httptest.NewRecorder()
			ts.handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t, memory.New())
	token := ts.PerformLogin(t, `admin`, `admin12.3`)

	assert.Equal(t, http.StatusOK, ts.do(t, `GET`, `/session`, token, nil).Code)

	rr := ts.do(t, `POST`, `/logout`, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	last, _ := ts.notifications.Last()
	assert.Equal(t, `Logged out successfully`, last.Message)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, `GET`, `/session`, token, nil).Code)
}

func TestPropertyCreateHandler(t *testing.T) {
	ts := newTestServer(t, memory.New())
	token := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`)

	testCases := []struct {
		name         string
		token        string
		body         any
		expectedCode int
	}{
		{name: "Authorized user", token: token.Token, body: landProperty(), expectedCode: http.StatusOK},
		{name: "Unauthorized access", token: ``, body: landProperty(), expectedCode: http.StatusUnauthorized},
		{name: "JSON Unmarshal error", token: token.Token, body: []byte(`{"invalidJson"}`), expectedCode: http.StatusBadRequest},
		{name: "Unknown property type", token: token.Token, body: records.PropertyFields{Title: `Boat`, Type: `Boat`}, expectedCode: http.StatusBadRequest},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.name), func(t *testing.T) {
			rr := ts.do(t, `POST`, `/property/create`, tc.token, tc.body)
			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode == http.StatusOK {
				property := decode[models.Property](t, rr)
				assert.NotEmpty(t, property.Id)
				assert.Equal(t, token.Account.Id, property.UserId)
				assert.Equal(t, models.PropertyPending, property.Status)
				assert.Equal(t, property.SubmissionDate, property.UpdatedDate)
				assert.Equal(t, []string{`deed.pdf`}, property.Documents)
			}
		})
	}
}

func TestCallerCannotOverrideStampedFields(t *testing.T) {
	ts := newTestServer(t, memory.New())
	token := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`)

	body := []byte(`{"title":"Flat","type":"Residential","status":"Verified","userId":"someone-else","id":"chosen"}`)
	rr := ts.do(t, `POST`, `/property/create`, token.Token, body)
	require.Equal(t, http.StatusOK, rr.Code)

	property := decode[models.Property](t, rr)
	assert.Equal(t, models.PropertyPending, property.Status)
	assert.Equal(t, token.Account.Id, property.UserId)
	assert.NotEqual(t, `chosen`, property.Id)
}

func TestPropertyUpdateHandler(t *testing.T) {
	ts := newTestServer(t, memory.New())
	alice := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token
	admin := ts.PerformLogin(t, `admin`, `admin12.3`)

	created := decode[models.Property](t, ts.do(t, `POST`, `/property/create`, alice, landProperty()))

	testCases := []struct {
		name         string
		token        string
		body         any
		expectedCode int
	}{
		{name: "Successful update by admin", token: admin, body: models.StatusUpdate{Id: created.Id, Status: `Reviewing`}, expectedCode: http.StatusOK},
		{name: "Owner is not an admin", token: alice, body: models.StatusUpdate{Id: created.Id, Status: `Verified`}, expectedCode: http.StatusForbidden},
		{name: "Unauthorized access", token: ``, body: models.StatusUpdate{Id: created.Id, Status: `Verified`}, expectedCode: http.StatusUnauthorized},
		{name: "Unknown status", token: admin, body: models.StatusUpdate{Id: created.Id, Status: `Completed`}, expectedCode: http.StatusBadRequest},
		{name: "Missing record", token: admin, body: models.StatusUpdate{Id: `missing`, Status: `Verified`}, expectedCode: http.StatusNotFound},
		{name: "JSON Unmarshal error", token: admin, body: []byte(`{"invalidJson"}`), expectedCode: http.StatusBadRequest},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.name), func(t *testing.T) {
			rr := ts.do(t, `POST`, `/property/update`, tc.token, tc.body)
			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode == http.StatusOK {
				updated := decode[models.Property](t, rr)
				assert.Equal(t, models.PropertyReviewing, updated.Status)
				assert.True(t, updated.UpdatedDate.After(created.UpdatedDate))
			}
		})
	}

	stored := decode[models.Property](t, ts.do(t, `GET`, `/property/`+created.Id, alice, nil))
	assert.Equal(t, models.PropertyReviewing, stored.Status)
}

func TestPropertyHandlerVisibility(t *testing.T) {
	ts := newTestServer(t, memory.New())
	alice := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token
	bob := ts.PerformRegister(t, `Bob`, `bob@x.com`, `pw2`).Token
	admin := ts.PerformLogin(t, `admin`, `admin12.3`)

	created := decode[models.Property](t, ts.do(t, `POST`, `/property/create`, alice, landProperty()))

	assert.Equal(t, http.StatusOK, ts.do(t, `GET`, `/property/`+created.Id, alice, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, `GET`, `/property/`+created.Id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, `GET`, `/property/`+created.Id, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, `GET`, `/property/missing`, admin, nil).Code)
}

func TestPropertiesFilter(t *testing.T) {
	ts := newTestServer(t, memory.New())
	alice := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token
	admin := ts.PerformLogin(t, `admin`, `admin12.3`)

	vehicle := records.PropertyFields{Title: `Red truck`, Type: models.TypeVehicle, Location: `Ogdenville`}
	ts.do(t, `POST`, `/property/create`, alice, landProperty())
	truck := decode[models.Property](t, ts.do(t, `POST`, `/property/create`, alice, vehicle))
	ts.do(t, `POST`, `/property/update`, admin, models.StatusUpdate{Id: truck.Id, Status: `Verified`})

	testCases := []struct {
		query        string
		expectedCode int
		expectedLen  int
	}{
		{query: ``, expectedCode: http.StatusOK, expectedLen: 2},
		{query: `?type=Vehicle`, expectedCode: http.StatusOK, expectedLen: 1},
		{query: `?status=Verified`, expectedCode: http.StatusOK, expectedLen: 1},
		{query: `?status=Pending&search=plot`, expectedCode: http.StatusOK, expectedLen: 1},
		{query: `?search=nothing`, expectedCode: http.StatusOK, expectedLen: 0},
		{query: `?search=land`, expectedCode: http.StatusOK, expectedLen: 1},
		{query: `?status=Completed`, expectedCode: http.StatusBadRequest},
		{query: `?type=Boat`, expectedCode: http.StatusBadRequest},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Test case %d: %s", i, tc.query), func(t *testing.T) {
			rr := ts.do(t, `GET`, `/properties`+tc.query, admin, nil)
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				assert.Len(t, decode[[]models.Property](t, rr), tc.expectedLen)
			}
		})
	}
}

func TestRequestHandlers(t *testing.T) {
	ts := newTestServer(t, memory.New())
	alice := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token
	bob := ts.PerformRegister(t, `Bob`, `bob@x.com`, `pw2`).Token
	admin := ts.PerformLogin(t, `admin`, `admin12.3`)

	fields := records.RequestFields{
		PreferredType:  models.TypeCommercial,
		Location:       `Capital City`,
		Purpose:        models.PurposeInvestment,
		AdditionalInfo: `Office space`,
	}

	rr := ts.do(t, `POST`, `/request/create`, alice, fields)
	require.Equal(t, http.StatusOK, rr.Code)
	request := decode[models.PropertyRequest](t, rr)
	assert.Equal(t, models.RequestPending, request.Status)

	rr = ts.do(t, `POST`, `/request/create`, alice, records.RequestFields{PreferredType: models.TypeLand, Purpose: `Lease`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Len(t, decode[[]models.PropertyRequest](t, ts.do(t, `GET`, `/requests`, alice, nil)), 1)
	assert.Len(t, decode[[]models.PropertyRequest](t, ts.do(t, `GET`, `/requests`, bob, nil)), 0)
	assert.Len(t, decode[[]models.PropertyRequest](t, ts.do(t, `GET`, `/requests?purpose=Investment`, admin, nil)), 1)
	assert.Len(t, decode[[]models.PropertyRequest](t, ts.do(t, `GET`, `/requests?search=office`, admin, nil)), 1)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, `GET`, `/requests?purpose=Lease`, admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, `GET`, `/requests?status=Verified`, admin, nil).Code)

	assert.Equal(t, http.StatusForbidden, ts.do(t, `POST`, `/request/update`, alice, models.StatusUpdate{Id: request.Id, Status: `Completed`}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, `POST`, `/request/update`, admin, models.StatusUpdate{Id: request.Id, Status: `Verified`}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, `POST`, `/request/update`, admin, models.StatusUpdate{Id: `missing`, Status: `Completed`}).Code)

	rr = ts.do(t, `POST`, `/request/update`, admin, models.StatusUpdate{Id: request.Id, Status: `Completed`})
	require.Equal(t, http.StatusOK, rr.Code)
	last, _ := ts.notifications.Last()
	assert.Equal(t, `Request status updated to Completed`, last.Message)

	rr = ts.do(t, `GET`, `/request/`+request.Id, alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.RequestCompleted, decode[models.PropertyRequest](t, rr).Status)
	assert.Equal(t, http.StatusNotFound, ts.do(t, `GET`, `/request/`+request.Id, bob, nil).Code)
}

func TestDashboardHandler(t *testing.T) {
	ts := newTestServer(t, memory.New())
	alice := ts.PerformRegister(t, `Alice`, `alice@x.com`, `pw1`).Token
	bob := ts.PerformRegister(t, `Bob`, `bob@x.com`, `pw2`).Token
	admin := ts.PerformLogin(t, `admin`, `admin12.3`)

	ts.do(t, `POST`, `/property/create`, alice, landProperty())
	ts.do(t, `POST`, `/property/create`, bob, landProperty())

	d := decode[records.Dashboard](t, ts.do(t, `GET`, `/dashboard`, admin, nil))
	assert.Equal(t, 2, d.TotalProperties)
	assert.Equal(t, 2, d.PropertiesByStatus[models.PropertyPending])

	d = decode[records.Dashboard](t, ts.do(t, `GET`, `/dashboard`, bob, nil))
	assert.Equal(t, 1, d.TotalProperties)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, `GET`, `/dashboard`, ``, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, memory.New())
	ts.PerformLogin(t, `admin`, `admin12.3`)

	rr := ts.do(t, `GET`, `/metrics`, ``, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `verify_notifications_total{level="success",message="Admin login successful"} 1`)
	assert.Contains(t, rr.Body.String(), `verify_http_requests_total{code="200",method="POST",route="/login"} 1`)
}
