package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/config"
	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/queue"
	"github.com/iliyamo/product-review-hub/internal/session"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (r *recordedEvents) Publish(_ context.Context, ev queue.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordedEvents) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type app struct {
	t      *testing.T
	e      *echo.Echo
	db     *database.DB
	events *recordedEvents
}

var seed = []string{
	`INSERT INTO Products (product_id, product_name, actual_price, discounted_price, discount_percentage, rating, rating_count, about_product) VALUES
		('P1', 'USB Cable', 399, 23.9, 94.6, 4.2, 24269, 'Fast charging cable'),
		('P2', 'USB Cable', 299, 149, 50, 4.0, 100, ''),
		('P3', 'Wireless Mouse', 60, 45, 25, 3.9, 7, 'Quiet clicks'),
		('P4', 'Keyboard', 80, NULL, NULL, NULL, 0, NULL)`,
	`INSERT INTO Categories (category_id, category_name) VALUES (1, 'Electronics'), (2, 'Home & Kitchen')`,
	`INSERT INTO CategoryAssignments (product_id, category_id) VALUES ('P1', 1), ('P2', 1), ('P3', 1)`,
	`INSERT INTO Users (user_id, user_name) VALUES ('U1', 'alice'), ('U2', 'bob')`,
	`INSERT INTO Reviews (review_id, product_id, user_id, review_title, review_content, sentiment) VALUES
		('R-bob', 'P1', 'U2', 'Solid', 'Works fine', 'Positive')`,
}

func newApp(t *testing.T, ownerOnly bool) *app {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	for _, stmt := range seed {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	cfg := config.Default()
	cfg.DBDriver = config.DriverSQLite
	cfg.DatabaseURL = ":memory:"
	cfg.SecretKey = "test-secret"
	cfg.ReviewDeleteOwnerOnly = ownerOnly

	events := &recordedEvents{}
	e, err := New(Deps{
		Cfg:      cfg,
		DB:       db,
		Sessions: session.NewManager(cfg.SecretKey, time.Hour, false, nil),
		Events:   events,
		Log:      zap.NewNop(),
	})
	require.NoError(t, err)
	return &app{t: t, e: e, db: db, events: events}
}

func (a *app) do(method, target, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, "", "", cookies...)
}

func (a *app) postJSON(target, body string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, echo.MIMEApplicationJSON, body)
}

func (a *app) postForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, echo.MIMEApplicationForm, form.Encode(), cookies...)
}

func (a *app) count(query string, args ...any) int {
	a.t.Helper()
	var n int
	require.NoError(a.t, a.db.QueryRow(query, args...).Scan(&n))
	return n
}

func (a *app) login(name, id string) *http.Cookie {
	a.t.Helper()
	rec := a.postJSON("/", `{"username":"`+name+`","user_id":"`+id+`"}`)
	require.Equal(a.t, http.StatusOK, rec.Code)
	require.JSONEq(a.t, `{"valid":true}`, rec.Body.String())
	return cookieFrom(a.t, rec)
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName && ck.Value != "" {
			return true
		}
	}
	return false
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, location, rec.Header().Get(echo.HeaderLocation))
}

func TestLogin(t *testing.T) {
	a := newApp(t, true)

	for _, body := range []string{
		`{"username":"alice","user_id":"U2"}`,
		`{"username":"carol","user_id":"U1"}`,
		`{}`,
	} {
		rec := a.postJSON("/", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
		assert.JSONEq(t, `{"valid":false}`, rec.Body.String())
		assert.False(t, hasSessionCookie(rec))
	}

	ck := a.login("alice", "U1")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.StatusOK, a.get("/userprofile", ck).Code)
}

func TestLoginPage(t *testing.T) {
	a := newApp(t, true)
	rec := a.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="register-form"`)
}

func TestRegister(t *testing.T) {
	a := newApp(t, true)

	rec := a.postJSON("/register_user", `{"username":"  ","user_id":"U9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"registered":false,"message":"Missing username or user ID"}`, rec.Body.String())

	rec = a.postJSON("/register_user", `{"username":"carol","user_id":"U3"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"registered":true,"message":"Registration successful"}`, rec.Body.String())
	assert.True(t, hasSessionCookie(rec))

	for _, body := range []string{
		`{"username":"carol","user_id":"U4"}`,
		`{"username":"dave","user_id":"U3"}`,
	} {
		rec = a.postJSON("/register_user", body)
		assert.Equal(t, http.StatusConflict, rec.Code, body)
		assert.JSONEq(t, `{"registered":false,"message":"User already exists"}`, rec.Body.String())
	}
	assert.Equal(t, 3, a.count("SELECT COUNT(*) FROM Users"))
	assert.Equal(t, []string{queue.KindUserRegistered}, a.events.kinds())
}

func TestSessionGatedRoutesRedirect(t *testing.T) {
	a := newApp(t, true)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/userprofile"},
		{http.MethodPost, "/userprofile"},
		{http.MethodPost, "/delete_review/R-bob"},
		{http.MethodPost, "/update_profile"},
		{http.MethodGet, "/user_reviews"},
		{http.MethodPost, "/delete_account"},
	} {
		rec := a.do(r.method, r.path, echo.MIMEApplicationForm, "")
		assertRedirect(t, rec, "/")
	}
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Reviews"))
}

func TestLogout(t *testing.T) {
	a := newApp(t, true)
	ck := a.login("alice", "U1")
	rec := a.get("/logout", ck)
	assertRedirect(t, rec, "/")
	assert.False(t, hasSessionCookie(rec))

	assertRedirect(t, a.get("/logout"), "/")
}

func TestCreateReview(t *testing.T) {
	a := newApp(t, true)
	ck := a.login("alice", "U1")
	form := url.Values{
		"review_id":      {"R1"},
		"product_id":     {"P3"},
		"review_title":   {"Nice"},
		"review_content": {"Very quiet"},
	}

	assertRedirect(t, a.postForm("/userprofile", form, ck), "/userprofile")
	rec := a.postForm("/userprofile", form, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Review ID already exists", rec.Body.String())
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Reviews WHERE review_id = 'R1'"))
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Reviews WHERE review_id = 'R1' AND user_id = 'U1'"))

	rec = a.postForm("/userprofile", url.Values{"product_id": {"P3"}}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	page := a.get("/userprofile", ck)
	assert.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "Very quiet")
	assert.Contains(t, body, "Wireless Mouse")
	assert.NotContains(t, body, "Works fine", "other users' reviews are not listed")
	assert.Contains(t, body, `<option value="P4">Keyboard</option>`)

	assert.Equal(t, []string{queue.KindReviewCreated}, a.events.kinds())
}

func TestDeleteReview_OwnerOnly(t *testing.T) {
	a := newApp(t, true)
	ck := a.login("alice", "U1")
	assertRedirect(t, a.postForm("/userprofile", url.Values{"review_id": {"R1"}, "product_id": {"P1"}}, ck), "/userprofile")

	assertRedirect(t, a.postForm("/delete_review/R1", nil, ck), "/userprofile")
	assert.Equal(t, 0, a.count("SELECT COUNT(*) FROM Reviews WHERE review_id = 'R1'"))

	assertRedirect(t, a.postForm("/delete_review/does-not-exist", nil, ck), "/userprofile")
	assertRedirect(t, a.postForm("/delete_review/R-bob", nil, ck), "/userprofile")
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Reviews"), "bob's review survives")

	assert.Equal(t, []string{queue.KindReviewCreated, queue.KindReviewDeleted}, a.events.kinds())
}

func TestDeleteReview_AnyOwner(t *testing.T) {
	a := newApp(t, false)
	ck := a.login("alice", "U1")
	assertRedirect(t, a.postForm("/delete_review/R-bob", nil, ck), "/userprofile")
	assert.Equal(t, 0, a.count("SELECT COUNT(*) FROM Reviews"))
}

func TestUserReviews(t *testing.T) {
	a := newApp(t, true)
	_, err := a.db.Exec(`INSERT INTO Reviews (review_id, product_id, user_id, review_title, review_content)
		VALUES ('R1', 'P3', 'U1', 'Mouse review', 'ok'), ('R2', 'GONE', 'U1', 'Orphan review', 'x')`)
	require.NoError(t, err)
	ck := a.login("alice", "U1")

	rec := a.get("/user_reviews", ck)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mouse review")
	assert.Contains(t, rec.Body.String(), "Wireless Mouse (P3)")
	assert.NotContains(t, rec.Body.String(), "Orphan review")

	_, err = a.db.Exec("DELETE FROM Users WHERE user_id = 'U1'")
	require.NoError(t, err)
	rec = a.get("/user_reviews", ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No such user found", rec.Body.String())
}

func TestUpdateProfile(t *testing.T) {
	a := newApp(t, true)
	ck := a.login("alice", "U1")

	rec := a.postForm("/update_profile", url.Values{"newUsername": {""}}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username is required.", rec.Body.String())

	rec = a.postForm("/update_profile", url.Values{"newUsername": {"bob"}}, ck)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Users WHERE user_name = 'alice'"))

	rec = a.postForm("/update_profile", url.Values{"newUsername": {"alicia"}}, ck)
	assertRedirect(t, rec, "/")
	assert.False(t, hasSessionCookie(rec))

	assert.JSONEq(t, `{"valid":false}`, a.postJSON("/", `{"username":"alice","user_id":"U1"}`).Body.String())
	a.login("alicia", "U1")
	assert.Equal(t, []string{queue.KindUserRenamed}, a.events.kinds())
}

func TestDeleteAccount(t *testing.T) {
	a := newApp(t, true)
	ck := a.login("bob", "U2")

	rec := a.postForm("/delete_account", nil, ck)
	assertRedirect(t, rec, "/")
	assert.False(t, hasSessionCookie(rec))
	assert.Equal(t, 0, a.count("SELECT COUNT(*) FROM Reviews WHERE user_id = 'U2'"))
	assert.Equal(t, 0, a.count("SELECT COUNT(*) FROM Users WHERE user_id = 'U2'"))
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Users"))

	assert.JSONEq(t, `{"valid":false}`, a.postJSON("/", `{"username":"bob","user_id":"U2"}`).Body.String())

	// Replaying the old cookie finds no user and only clears the session.
	assertRedirect(t, a.postForm("/delete_account", nil, ck), "/")
	assert.Equal(t, []string{queue.KindUserDeleted}, a.events.kinds())
}

func TestHome(t *testing.T) {
	a := newApp(t, true)
	rec := a.get("/home")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Wireless Mouse")
	assert.Contains(t, body, "95%")
	assert.Contains(t, body, "Home &amp; Kitchen")

	rec = a.postForm("/home", url.Values{"search": {"USB Cable"}})
	assertRedirect(t, rec, "/compareproduct?query=USB+Cable")

	rec = a.get("/compareproduct?query=USB+Cable")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="USB Cable"`)

	assertRedirect(t, a.postForm("/add_review", nil), "/home")
}

func TestCatalogJSON(t *testing.T) {
	a := newApp(t, true)

	var names []string
	rec := a.get("/autocomplete?term=usb")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"USB Cable", "USB Cable"}, names)

	rec = a.get("/autocomplete?term=nothing-like-this")
	assert.JSONEq(t, `[]`, rec.Body.String())

	var discounts []map[string]any
	rec = a.get("/discounts_and_deals")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &discounts))
	require.Len(t, discounts, 2)
	assert.Equal(t, "P1", discounts[0]["product_id"])
	assert.Equal(t, "95%", discounts[0]["total_discount"])

	var cheap []map[string]any
	rec = a.get("/under_fifty")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cheap))
	require.Len(t, cheap, 1)
	assert.Equal(t, "Positive", cheap[0]["sentiment"])
}

func TestProductDetails(t *testing.T) {
	a := newApp(t, true)

	rec := a.get("/get_product_details?product_name=Wireless+Mouse")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"product_id":"P3","product_name":"Wireless Mouse","discounted_price":45,
		"discount_percentage":25,"rating":3.9,"about_product":"Quiet clicks"}`, rec.Body.String())

	rec = a.get("/get_product_details?product_name=USB+Cable")
	var detail map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	if detail["product_id"] == "P1" {
		assert.EqualValues(t, 23, detail["discounted_price"])
		assert.EqualValues(t, 94, detail["discount_percentage"])
	}

	rec = a.get("/get_product_details?product_name=Keyboard")
	assert.JSONEq(t, `{"product_id":"P4","product_name":"Keyboard","discounted_price":null,
		"discount_percentage":null,"rating":0,"about_product":""}`, rec.Body.String())

	rec = a.get("/get_product_details?product_name=Nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())

	for _, target := range []string{"/get_product_details", "/get_product_details?product_name="} {
		rec = a.get(target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
	}
}

func TestCategoryProducts(t *testing.T) {
	a := newApp(t, true)
	rec := a.get("/category_products/Electronics")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Top products in Electronics")
	assert.Equal(t, 1, strings.Count(body, "Best seller"))
	assert.Less(t, strings.Index(body, "P1"), strings.Index(body, "P3"))

	rec = a.get("/category_products/" + url.PathEscape("Home & Kitchen"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No products in this category.")
}

func TestHealthAndStatic(t *testing.T) {
	a := newApp(t, true)
	rec := a.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = a.get("/static/js/script.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/autocomplete?term=")

	require.NoError(t, a.db.Close())
	assert.Equal(t, http.StatusServiceUnavailable, a.get("/healthz").Code)
}

func TestCredentials_NonStringUserID(t *testing.T) {
	a := newApp(t, true)

	rec := a.postJSON("/", `{"username":"alice","user_id":12345}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false}`, rec.Body.String())

	rec = a.postJSON("/register_user", `{"username":"zed","user_id":777}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"registered":true,"message":"Registration successful"}`, rec.Body.String())
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Users WHERE user_name = 'zed' AND user_id = '777'"))

	rec = a.postJSON("/", `{"username":"zed","user_id":777}`)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
	assert.True(t, hasSessionCookie(rec))

	rec = a.postJSON("/register_user", `{"username":"nobody","user_id":null}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"registered":false,"message":"Missing username or user ID"}`, rec.Body.String())
}

func TestCredentials_TrimmedOnLoginAndRegister(t *testing.T) {
	a := newApp(t, true)

	rec := a.postJSON("/register_user", `{"username":" sam ","user_id":" U7 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, a.count("SELECT COUNT(*) FROM Users WHERE user_name = 'sam' AND user_id = 'U7'"))

	rec = a.postJSON("/", `{"username":" sam ","user_id":" U7 "}`)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
	assert.True(t, hasSessionCookie(rec))
}
