package web

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/recyclehub/internal/auth"
	"github.com/erazemk/recyclehub/internal/db"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/store/sqlite"
	"github.com/erazemk/recyclehub/internal/upload"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server    *httptest.Server
	items     *service.ItemService
	uploadDir string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	st := sqlite.New(db.NewTestDB(t))
	dir := t.TempDir()
	local, err := upload.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	items := service.NewItemService(st, upload.New(local, 0), nil)
	accounts := service.NewAccountService(st, testJWTSecret)

	router, err := NewRouter(items, accounts, Config{UploadDir: dir})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, items: items, uploadDir: dir}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// signUp registers and logs in through the pages, leaving the browser on
// the role's home page.
func signUp(t *testing.T, env *testEnv, browser *http.Client, email, role string) {
	t.Helper()
	resp, err := browser.PostForm(env.server.URL+"/register", url.Values{
		"name": {"Test"}, "email": {email}, "password": {"password123"}, "role": {role},
	})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Account created") {
		t.Fatalf("expected registration notice on login page, got status %d", resp.StatusCode)
	}

	resp, err = browser.PostForm(env.server.URL+"/login/"+role, url.Values{
		"email": {email}, "password": {"password123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != homeForRole(role) {
		t.Fatalf("login: got %d at %s", resp.StatusCode, resp.Request.URL.Path)
	}
}

func TestLandingPage(t *testing.T) {
	env := setupTestServer(t)
	resp, err := http.Get(env.server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "/login/user") || !strings.Contains(body, "/login/vendor") {
		t.Error("landing page should link to both logins")
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	env := setupTestServer(t)
	resp, err := newBrowser(t).Get(env.server.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.Request.URL.Path != "/" {
		t.Errorf("expected redirect to landing page, ended at %s", resp.Request.URL.Path)
	}
}

func TestLoginRoleMismatch(t *testing.T) {
	env := setupTestServer(t)
	browser := newBrowser(t)
	signUp(t, env, browser, "vendor@example.com", model.RoleVendor)

	resp, err := newBrowser(t).PostForm(env.server.URL+"/login/user", url.Values{
		"email": {"vendor@example.com"}, "password": {"password123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "not a user account") {
		t.Error("expected role mismatch message")
	}
}

func TestUserDashboardFlow(t *testing.T) {
	env := setupTestServer(t)
	browser := newBrowser(t)
	signUp(t, env, browser, "asha@example.com", model.RoleUser)

	// Add an item with a photo.
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	for k, v := range map[string]string{
		"name":           "Plastic Bottle",
		"description":    "Rinsed PET bottles",
		"category":       "Plastic",
		"city":           "Delhi",
		"contact_number": "9876543210",
	} {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("image", "bottle.png")
	png.Encode(part, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	mw.Close()

	resp, err := browser.Post(env.server.URL+"/dashboard/items", mw.FormDataContentType(), &form)
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Item added.") || !strings.Contains(body, "Plastic Bottle") {
		t.Fatalf("expected new item on dashboard, status %d", resp.StatusCode)
	}

	items, _ := env.items.List(context.Background())
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]

	// The uploaded photo is served.
	imgResp, err := http.Get(env.server.URL + item.Image)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, imgResp)
	if imgResp.StatusCode != http.StatusOK {
		t.Errorf("expected uploaded image to be served, got %d", imgResp.StatusCode)
	}
	entries, _ := os.ReadDir(env.uploadDir)
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Errorf("unexpected upload dir contents: %v", entries)
	}

	// Mark recycled.
	resp, err = browser.PostForm(env.server.URL+"/dashboard/items/"+item.ID+"/recycle", nil)
	if err != nil {
		t.Fatal(err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "Marked as recycled.") {
		t.Error("expected recycle notice")
	}
	got, _ := env.items.Get(context.Background(), item.ID)
	if got.Status != model.ItemStatusRecycled {
		t.Errorf("expected recycled, got %s", got.Status)
	}

	// Delete.
	resp, err = browser.PostForm(env.server.URL+"/dashboard/items/"+item.ID+"/delete", nil)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	items, _ = env.items.List(context.Background())
	if len(items) != 0 {
		t.Errorf("expected item deleted, %d remain", len(items))
	}
}

func TestDashboardCreateValidation(t *testing.T) {
	env := setupTestServer(t)
	browser := newBrowser(t)
	signUp(t, env, browser, "asha@example.com", model.RoleUser)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	mw.WriteField("name", "Old Newspapers")
	mw.Close()

	resp, err := browser.Post(env.server.URL+"/dashboard/items", mw.FormDataContentType(), &form)
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "description is required") || !strings.Contains(body, "Old Newspapers") {
		t.Error("expected error toast and preserved form values")
	}
}

func TestVendorPageFilters(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	owner := model.Actor{UserID: "u1", Role: model.RoleUser}
	for _, f := range []model.ItemFields{
		{Name: "Glass Jars", Description: "d", Category: "Glass", City: "Mumbai", ContactNumber: "111"},
		{Name: "Steel Cans", Description: "d", Category: "Metal", City: "Delhi", ContactNumber: "222"},
	} {
		if _, err := env.items.Create(ctx, owner, f, nil); err != nil {
			t.Fatal(err)
		}
	}

	browser := newBrowser(t)
	signUp(t, env, browser, "vendor@example.com", model.RoleVendor)

	resp, err := browser.Get(env.server.URL + "/vendor?city=Mumbai")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Glass Jars") || strings.Contains(body, "Steel Cans") {
		t.Error("city filter not applied")
	}
	if !strings.Contains(body, "111") {
		t.Error("vendor page should show contact numbers")
	}

	// Vendors are sent away from the user dashboard.
	resp, err = browser.Get(env.server.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.Request.URL.Path != "/vendor" {
		t.Errorf("expected redirect to /vendor, ended at %s", resp.Request.URL.Path)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupTestServer(t)
	browser := newBrowser(t)
	signUp(t, env, browser, "asha@example.com", model.RoleUser)

	u, _ := url.Parse(env.server.URL)
	var token string
	for _, c := range browser.Jar.Cookies(u) {
		if c.Name == tokenCookie {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("no session cookie after login")
	}

	resp, err := browser.PostForm(env.server.URL+"/logout", nil)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)

	// Replaying the old cookie no longer works.
	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.Request.URL.Path != "/" {
		t.Errorf("expected revoked session to land on /, ended at %s", resp.Request.URL.Path)
	}
}

func TestDashboardCreateUnreadableImage(t *testing.T) {
	env := setupTestServer(t)
	tmpl, err := LoadTemplates()
	if err != nil {
		t.Fatal(err)
	}
	s := &Server{Items: env.items, Templates: tmpl}

	req := httptest.NewRequest(http.MethodPost, "/dashboard/items", nil)
	values := url.Values{
		"name": {"Old Newspapers"}, "description": {"A stack"}, "category": {"Paper"},
		"city": {"Delhi"}, "contact_number": {"9876543210"},
	}
	req.Form = values
	// A file header with neither buffered content nor a temp file fails to open.
	req.MultipartForm = &multipart.Form{
		Value: values,
		File:  map[string][]*multipart.FileHeader{"image": {{Filename: "photo.png"}}},
	}
	claims := &auth.Claims{UserID: "u-1", Role: model.RoleUser}
	req = req.WithContext(context.WithValue(req.Context(), webClaimsKey, claims))

	rec := httptest.NewRecorder()
	s.ItemCreateSubmit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "The image could not be read.") {
		t.Error("expected image error on the dashboard")
	}
	items, err := env.items.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected no item created, got %d", len(items))
	}
}
