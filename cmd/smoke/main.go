// Command smoke walks a running service through the create, read, update,
// delete cycle and reports each step.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type user struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type deleteResponse struct {
	Message     string `json:"message"`
	DeletedUser user   `json:"deletedUser"`
}

var (
	green  = color.New(color.FgGreen).PrintlnFunc()
	blue   = color.New(color.FgBlue).PrintlnFunc()
	yellow = color.New(color.FgYellow).PrintlnFunc()
	red    = color.New(color.FgRed).PrintlnFunc()
)

type runner struct {
	baseURL  string
	client   *http.Client
	failures int
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "base URL of the user service")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	r := &runner{baseURL: *baseURL, client: &http.Client{Timeout: *timeout}}

	r.crud()
	r.failureCases()

	if r.failures > 0 {
		red(fmt.Sprintf("\n--- %d check(s) failed ---", r.failures))
		os.Exit(1)
	}
	green("\n--- All checks passed ---")
}

func (r *runner) crud() {
	blue("--- 1. CRUD cycle ---")

	yellow("\n-> POST /users")
	var created user
	status, _ := r.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`, &created)
	r.check(status == http.StatusCreated && created.ID != "" && eq(created.Name, "Ann") && eq(created.Email, "ann@x.com"),
		"created user %s (status %d)", created.ID, status)

	yellow("\n-> GET /users/{id}")
	var fetched user
	status, _ = r.do(http.MethodGet, "/users/"+created.ID, "", &fetched)
	r.check(status == http.StatusOK && fetched.ID == created.ID && eq(fetched.Name, "Ann"),
		"fetched same document (status %d)", status)

	yellow("\n-> GET /users")
	var all []user
	status, _ = r.do(http.MethodGet, "/users", "", &all)
	r.check(status == http.StatusOK && contains(all, created.ID), "list contains %s (status %d, %d users)", created.ID, status, len(all))

	yellow("\n-> PUT /users/{id}")
	var updated user
	status, _ = r.do(http.MethodPut, "/users/"+created.ID, `{"name":"Ann B","email":"ann@x.com"}`, &updated)
	r.check(status == http.StatusOK && eq(updated.Name, "Ann B"), "post-update document returned (status %d)", status)

	yellow("\n-> DELETE /users/{id}")
	var deleted deleteResponse
	status, _ = r.do(http.MethodDelete, "/users/"+created.ID, "", &deleted)
	r.check(status == http.StatusOK && deleted.Message == "User deleted" && deleted.DeletedUser.ID == created.ID,
		"deleted user returned (status %d)", status)

	yellow("\n-> GET /users/{id} after delete")
	status, body := r.do(http.MethodGet, "/users/"+created.ID, "", nil)
	r.check(status == http.StatusNotFound, "gone (status %d, body %s)", status, body)
}

func (r *runner) failureCases() {
	blue("\n--- 2. Failure cases ---")
	missing := primitive.NewObjectID().Hex()
	yellow("Using non-existent id:", missing)

	status, _ := r.do(http.MethodGet, "/users/"+missing, "", nil)
	r.check(status == http.StatusNotFound, "GET missing id -> %d (expected 404)", status)

	status, _ = r.do(http.MethodPut, "/users/"+missing, `{}`, nil)
	r.check(status == http.StatusNotFound, "PUT missing id -> %d (expected 404)", status)

	status, _ = r.do(http.MethodDelete, "/users/"+missing, "", nil)
	r.check(status == http.StatusNotFound, "DELETE missing id -> %d (expected 404)", status)

	status, body := r.do(http.MethodGet, "/users/not-an-id", "", nil)
	r.check(status == http.StatusInternalServerError, "GET malformed id -> %d (expected 500) %s", status, body)
}

// do sends one request and decodes a JSON body into out when out is non-nil.
// Transport errors are reported as status 0.
func (r *runner) do(method, path, body string, out any) (int, string) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, r.baseURL+path, reader)
	if err != nil {
		red("building request:", err)
		return 0, ""
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		red("request failed:", err)
		return 0, ""
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			red("decoding response:", err)
		}
	}
	return resp.StatusCode, string(raw)
}

func (r *runner) check(ok bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if ok {
		green("OK  ", msg)
		return
	}
	r.failures++
	red("FAIL", msg)
}

func eq(p *string, want string) bool {
	return p != nil && *p == want
}

func contains(users []user, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
