package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/cache"
	ginhandler "user-crud-service/internal/adapter/gin/handler"
	ginrouter "user-crud-service/internal/adapter/gin/router"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/test/fake"
)

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

// GinBenchmarkServer holds the in-process router under test
type GinBenchmarkServer struct {
	handler   http.Handler
	collector *MetricsCollector
}

// setupGinBenchmarkServer builds the full router. With withCache the store
// sits behind the Redis cache-aside repository.
func setupGinBenchmarkServer(b *testing.B, withCache bool) *GinBenchmarkServer {
	b.Helper()
	log := zap.NewNop()

	var repo user.Repository = fake.NewUserRepo()
	if withCache {
		mr := miniredis.RunT(b)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		b.Cleanup(func() { _ = rdb.Close() })
		repo = cached.NewUserRepository(repo, cache.NewRedisUserCache(rdb, time.Minute, log), log)
	}

	router := ginrouter.SetupRouter(
		ginhandler.NewUserHandler(user.New(repo, log), log, true),
		ginhandler.NewHealthHandler(noopPinger{}, "bench", log),
		nil,
		ginrouter.Options{},
		log,
	)

	return &GinBenchmarkServer{handler: router, collector: NewMetricsCollector()}
}

// do serves one request, records its latency and checks the status.
func (gs *GinBenchmarkServer) do(method, path string, body []byte, want int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()

	start := time.Now()
	gs.handler.ServeHTTP(w, req)
	gs.collector.RecordLatency(time.Since(start))

	if w.Code != want {
		gs.collector.RecordError()
	}
	return w
}

func (gs *GinBenchmarkServer) createUser(b *testing.B) string {
	w := gs.do(http.MethodPost, "/users", []byte(`{"name":"Bench","email":"bench@x.com"}`), http.StatusCreated)
	var resp ginhandler.UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		b.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func BenchmarkGin_CreateUser(b *testing.B) {
	gs := setupGinBenchmarkServer(b, false)
	body := []byte(`{"name":"Bench","email":"bench@x.com"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gs.do(http.MethodPost, "/users", body, http.StatusCreated)
	}
	b.StopTimer()
	gs.collector.Report(b)
}

func benchmarkGetUser(b *testing.B, withCache bool) {
	gs := setupGinBenchmarkServer(b, withCache)
	id := gs.createUser(b)
	gs.collector = NewMetricsCollector()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			gs.do(http.MethodGet, "/users/"+id, nil, http.StatusOK)
		}
	})
	b.StopTimer()
	gs.collector.Report(b)
}

func BenchmarkGin_GetUser(b *testing.B)       { benchmarkGetUser(b, false) }
func BenchmarkGin_GetUserCached(b *testing.B) { benchmarkGetUser(b, true) }

func BenchmarkGin_UpdateUser(b *testing.B) {
	gs := setupGinBenchmarkServer(b, false)
	id := gs.createUser(b)
	gs.collector = NewMetricsCollector()
	body := []byte(`{"name":"Bench B","email":"bench@x.com"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gs.do(http.MethodPut, "/users/"+id, body, http.StatusOK)
	}
	b.StopTimer()
	gs.collector.Report(b)
}

func BenchmarkGin_DeleteUser(b *testing.B) {
	gs := setupGinBenchmarkServer(b, false)

	ids := make([]string, b.N)
	for i := range ids {
		ids[i] = gs.createUser(b)
	}
	gs.collector = NewMetricsCollector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gs.do(http.MethodDelete, "/users/"+ids[i], nil, http.StatusOK)
	}
	b.StopTimer()
	gs.collector.Report(b)
}

func BenchmarkGin_ListUsers(b *testing.B) {
	gs := setupGinBenchmarkServer(b, false)
	for i := 0; i < 100; i++ {
		gs.createUser(b)
	}
	gs.collector = NewMetricsCollector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gs.do(http.MethodGet, "/users", nil, http.StatusOK)
	}
	b.StopTimer()
	gs.collector.Report(b)
}

func BenchmarkGin_MixedWorkload(b *testing.B) {
	gs := setupGinBenchmarkServer(b, true)
	id := gs.createUser(b)
	gs.collector = NewMetricsCollector()
	update := []byte(`{"name":"Mixed","email":"mixed@x.com"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		switch i % 10 {
		case 0:
			gs.do(http.MethodPut, "/users/"+id, update, http.StatusOK)
		case 1:
			gs.do(http.MethodGet, "/users", nil, http.StatusOK)
		default:
			gs.do(http.MethodGet, "/users/"+id, nil, http.StatusOK)
		}
	}
	b.StopTimer()
	gs.collector.Report(b)
}
