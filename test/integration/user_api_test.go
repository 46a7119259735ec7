package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"user-crud-service/internal/adapter/cache"
	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/gin/router"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/test/fake"
)

type pinger struct{}

func (pinger) Ping(_ context.Context) error { return nil }

// UserAPIIntegrationTestSuite drives the full HTTP stack: router, middleware,
// handlers, usecase, Redis cache and an in-memory store.
type UserAPIIntegrationTestSuite struct {
	suite.Suite
	server     *httptest.Server
	httpClient *http.Client
	repo       *fake.UserRepo
	redis      *miniredis.Miniredis
	rdb        *redis.Client
}

func (s *UserAPIIntegrationTestSuite) SetupTest() {
	log := zaptest.NewLogger(s.T())

	s.repo = fake.NewUserRepo()
	s.redis = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.redis.Addr()})

	repo := cached.NewUserRepository(s.repo, cache.NewRedisUserCache(s.rdb, time.Minute, log), log)
	uc := user.New(repo, log)

	r := router.SetupRouter(
		handler.NewUserHandler(uc, log, true),
		handler.NewHealthHandler(pinger{}, "user-crud-service", log),
		nil,
		router.Options{ExposeErrors: true},
		log,
	)

	s.server = httptest.NewServer(r)
	s.httpClient = s.server.Client()
}

func (s *UserAPIIntegrationTestSuite) TearDownTest() {
	s.server.Close()
	_ = s.rdb.Close()
}

func (s *UserAPIIntegrationTestSuite) request(method, path, body string) (*http.Response, []byte) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, raw
}

func (s *UserAPIIntegrationTestSuite) decode(raw []byte, v any) {
	s.Require().NoError(json.Unmarshal(raw, v), string(raw))
}

func (s *UserAPIIntegrationTestSuite) TestCRUDScenario() {
	resp, raw := s.request(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	s.Equal(http.StatusCreated, resp.StatusCode)
	var created handler.UserResponse
	s.decode(raw, &created)
	s.Len(created.ID, 24)
	s.Equal("Ann", *created.Name)
	s.Equal("ann@x.com", *created.Email)

	resp, raw = s.request(http.MethodGet, "/users/"+created.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"id":"`+created.ID+`","name":"Ann","email":"ann@x.com"}`, string(raw))

	resp, raw = s.request(http.MethodPut, "/users/"+created.ID, `{"name":"Ann B","email":"ann@x.com"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"id":"`+created.ID+`","name":"Ann B","email":"ann@x.com"}`, string(raw))

	resp, raw = s.request(http.MethodGet, "/users/"+created.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"id":"`+created.ID+`","name":"Ann B","email":"ann@x.com"}`, string(raw))

	resp, raw = s.request(http.MethodDelete, "/users/"+created.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"message":"User deleted","deletedUser":{"id":"`+created.ID+`","name":"Ann B","email":"ann@x.com"}}`, string(raw))

	resp, raw = s.request(http.MethodGet, "/users/"+created.ID, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"message":"User not found"}`, string(raw))

	s.False(s.redis.Exists(cache.Key(created.ID)))
}

func (s *UserAPIIntegrationTestSuite) TestListInStoreOrder() {
	resp, raw := s.request(http.MethodGet, "/users", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("[]", string(raw))

	for _, name := range []string{"first", "second", "third"} {
		resp, _ = s.request(http.MethodPost, "/users", `{"name":"`+name+`"}`)
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
	}

	resp, raw = s.request(http.MethodGet, "/users", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var users []handler.UserResponse
	s.decode(raw, &users)
	s.Require().Len(users, 3)
	s.Equal("first", *users[0].Name)
	s.Equal("third", *users[2].Name)
	s.Nil(users[0].Email)
}

func (s *UserAPIIntegrationTestSuite) TestDuplicateEmailsAndArbitraryValues() {
	for i := 0; i < 2; i++ {
		resp, _ := s.request(http.MethodPost, "/users", `{"name":"","email":"not an email","extra":true}`)
		s.Equal(http.StatusCreated, resp.StatusCode)
	}
	s.Equal(2, s.repo.Len())
}

func (s *UserAPIIntegrationTestSuite) TestUpdateRemovesOmittedFields() {
	_, raw := s.request(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	var created handler.UserResponse
	s.decode(raw, &created)

	resp, raw := s.request(http.MethodPut, "/users/"+created.ID, `{"name":"Ann"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"id":"`+created.ID+`","name":"Ann"}`, string(raw))

	resp, raw = s.request(http.MethodPut, "/users/"+created.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"id":"`+created.ID+`"}`, string(raw))
}

func (s *UserAPIIntegrationTestSuite) TestCacheIsPopulatedAndInvalidated() {
	_, raw := s.request(http.MethodPost, "/users", `{"name":"Ann"}`)
	var created handler.UserResponse
	s.decode(raw, &created)

	s.request(http.MethodGet, "/users/"+created.ID, "")
	s.True(s.redis.Exists(cache.Key(created.ID)))

	s.request(http.MethodPut, "/users/"+created.ID, `{"name":"Ann B"}`)
	s.False(s.redis.Exists(cache.Key(created.ID)))

	_, raw = s.request(http.MethodGet, "/users/"+created.ID, "")
	s.JSONEq(`{"id":"`+created.ID+`","name":"Ann B"}`, string(raw))
}

func (s *UserAPIIntegrationTestSuite) TestMissingID() {
	missing := primitive.NewObjectID().Hex()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		resp, raw := s.request(method, "/users/"+missing, "")
		s.Equal(http.StatusNotFound, resp.StatusCode, method)
		s.JSONEq(`{"message":"User not found"}`, string(raw), method)
	}
}

func (s *UserAPIIntegrationTestSuite) TestMalformedIDIsServerError() {
	tests := []struct {
		method  string
		message string
	}{
		{http.MethodGet, handler.MsgErrFetchingUser},
		{http.MethodPut, handler.MsgErrUpdatingUser},
		{http.MethodDelete, handler.MsgErrDeletingUser},
	}

	for _, tt := range tests {
		resp, raw := s.request(tt.method, "/users/not-an-id", "")
		s.Equal(http.StatusInternalServerError, resp.StatusCode, tt.method)

		var body handler.ErrorResponse
		s.decode(raw, &body)
		s.Equal(tt.message, body.Message)
		s.Require().NotNil(body.Error)
		s.Equal("invalid_id", body.Error.Kind)
	}
}

func (s *UserAPIIntegrationTestSuite) TestStoreFailure() {
	s.repo.FailWith(errors.New("connection reset by peer"))
	id := primitive.NewObjectID().Hex()

	tests := []struct {
		method  string
		path    string
		message string
	}{
		{http.MethodPost, "/users", handler.MsgErrCreatingUser},
		{http.MethodGet, "/users", handler.MsgErrFetchingUsers},
		{http.MethodGet, "/users/" + id, handler.MsgErrFetchingUser},
		{http.MethodPut, "/users/" + id, handler.MsgErrUpdatingUser},
		{http.MethodDelete, "/users/" + id, handler.MsgErrDeletingUser},
	}

	for _, tt := range tests {
		resp, raw := s.request(tt.method, tt.path, "")
		s.Equal(http.StatusInternalServerError, resp.StatusCode, tt.method+" "+tt.path)

		var body handler.ErrorResponse
		s.decode(raw, &body)
		s.Equal(tt.message, body.Message)
		s.Require().NotNil(body.Error)
		s.Equal("store_failure", body.Error.Kind)
		s.Equal("connection reset by peer", body.Error.Message)
	}
}

func (s *UserAPIIntegrationTestSuite) TestInvalidBody() {
	resp, raw := s.request(http.MethodPost, "/users", `{"name":`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var body handler.ErrorResponse
	s.decode(raw, &body)
	s.Equal(handler.MsgInvalidBody, body.Message)
	s.Equal(0, s.repo.Len())
}

func (s *UserAPIIntegrationTestSuite) TestScalarFieldsCastToString() {
	resp, raw := s.request(http.MethodPost, "/users", `{"name":123,"email":false}`)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created handler.UserResponse
	s.decode(raw, &created)
	s.Require().NotNil(created.Name)
	s.Require().NotNil(created.Email)
	s.Equal("123", *created.Name)
	s.Equal("false", *created.Email)

	resp, raw = s.request(http.MethodPost, "/users", `{"name":{"first":"Ann"}}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var body handler.ErrorResponse
	s.decode(raw, &body)
	s.Equal(handler.MsgInvalidBody, body.Message)
	s.Equal(1, s.repo.Len())
}

func (s *UserAPIIntegrationTestSuite) TestRequestIDEchoed() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/health", nil)
	s.Require().NoError(err)
	req.Header.Set(middleware.RequestIDHeader, "trace-42")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("trace-42", resp.Header.Get(middleware.RequestIDHeader))
}

func TestUserAPIIntegration(t *testing.T) {
	suite.Run(t, new(UserAPIIntegrationTestSuite))
}
