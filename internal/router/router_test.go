package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/testutil"
	"github.com/aidenai/intranet/backend/internal/tokens"
	"github.com/aidenai/intranet/backend/pkg/identity"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type fakeValidator struct {
	claims *identity.Claims
	err    error
}

func (f *fakeValidator) Validate(context.Context, string) (*identity.Claims, error) {
	return f.claims, f.err
}

type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	issuer   *tokens.Issuer
	identity *fakeValidator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	issuer, err := tokens.NewIssuer("test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	ts := &testServer{
		e:        echo.New(),
		db:       testutil.NewDB(t),
		issuer:   issuer,
		identity: &fakeValidator{claims: &identity.Claims{Email: "alice@example.com", Name: "Alice"}},
	}
	if err := SetupRoutes(ts.e, Deps{AppName: "Intranet", DB: ts.db, Identity: ts.identity, Issuer: issuer}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) form(method, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return ts.do(req)
}

type upload struct {
	name, contentType, body string
}

func (ts *testServer) multipart(t *testing.T, method, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte(f.body))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return ts.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (ts *testServer) createPost(t *testing.T, title string, files ...upload) models.PostResponse {
	t.Helper()
	rec := ts.multipart(t, http.MethodPost, "/api/posts/", map[string]string{"title": title, "author": "comms"}, files...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: %d %s", rec.Code, rec.Body.String())
	}
	return decode[models.PostResponse](t, rec)
}

func TestExchangeIssuesTokensAndMeReturnsUser(t *testing.T) {
	ts := newTestServer(t)

	body := `{"id_token":"ms-token","tenant_slug":"aidenai"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/microsoft/exchange", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := ts.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange: %d %s", rec.Code, rec.Body.String())
	}
	tok := decode[models.TokenResponse](t, rec)
	if tok.TokenType != "bearer" || tok.AccessToken == "" || tok.RefreshToken == "" {
		t.Fatalf("unexpected token response: %+v", tok)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.AccessToken)
	rec = ts.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}
	me := decode[models.UserResponse](t, rec)
	if me.Email != "alice@example.com" || me.Name != "Alice" || me.ID == "" {
		t.Fatalf("unexpected me: %+v", me)
	}

	// second exchange resolves to the same user
	req = httptest.NewRequest(http.MethodPost, "/api/auth/microsoft/exchange", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = ts.do(req)
	again := decode[models.TokenResponse](t, rec)
	claims, err := ts.issuer.Parse(again.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != me.ID {
		t.Fatalf("expected same user id %q, got %q", me.ID, claims.Subject)
	}
	var users int64
	ts.db.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Fatalf("expected one user row, got %d", users)
	}
}

func TestExchangeErrors(t *testing.T) {
	ts := newTestServer(t)
	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/microsoft/exchange", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return ts.do(req).Code
	}

	if code := post(`{}`); code != http.StatusUnprocessableEntity {
		t.Fatalf("missing id_token: expected 422, got %d", code)
	}

	ts.identity.err = fmt.Errorf("%w: audience mismatch", identity.ErrInvalidToken)
	if code := post(`{"id_token":"x"}`); code != http.StatusUnauthorized {
		t.Fatalf("rejected token: expected 401, got %d", code)
	}

	ts.identity.err = nil
	ts.identity.claims = &identity.Claims{Name: "No Email"}
	if code := post(`{"id_token":"x"}`); code != http.StatusBadRequest {
		t.Fatalf("missing email: expected 400, got %d", code)
	}
}

func TestMeRejectsBadTokens(t *testing.T) {
	ts := newTestServer(t)

	orphan, err := ts.issuer.IssuePair("no-such-user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, _ := tokens.NewIssuer("other-secret", time.Minute, time.Hour)
	foreign, _ := other.IssuePair("no-such-user")

	for name, header := range map[string]string{
		"missing": "",
		"unknown": "Bearer " + orphan.AccessToken,
		"foreign": "Bearer " + foreign.AccessToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		if rec := ts.do(req); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestCreateAndDownloadAttachment(t *testing.T) {
	ts := newTestServer(t)

	post := ts.createPost(t, "Welcome",
		upload{name: "logo.png", contentType: "image/png", body: "PNGDATA"},
		upload{name: "notes.txt", contentType: "text/plain", body: "hello"},
	)
	if len(post.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %+v", post.Attachments)
	}
	logo := post.Attachments[0]
	if !logo.IsImage || logo.Size != 7 || logo.ContentType != "image/png" {
		t.Fatalf("unexpected attachment metadata: %+v", logo)
	}
	if post.Attachments[1].IsImage {
		t.Fatalf("text attachment must not be an image")
	}
	if post.Description != nil || post.AnnounceType != nil {
		t.Fatalf("expected absent optional fields to stay null: %+v", post)
	}

	rec := ts.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d/attachments/%d", post.ID, logo.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download: %d", rec.Code)
	}
	if rec.Body.String() != "PNGDATA" || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Fatalf("unexpected download: %q %q", rec.Body.String(), rec.Header().Get(echo.HeaderContentType))
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `inline; filename="logo.png"` {
		t.Fatalf("unexpected content disposition %q", got)
	}

	other := ts.createPost(t, "Other")
	rec = ts.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d/attachments/%d", other.ID, logo.ID), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for mismatched post, got %d", rec.Code)
	}
}

func TestCreatePostValidation(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.multipart(t, http.MethodPost, "/api/posts/", map[string]string{"title": "no author"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestListPostsPagination(t *testing.T) {
	ts := newTestServer(t)
	ts.createPost(t, "one")
	ts.createPost(t, "two")
	newest := ts.createPost(t, "three")

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/posts/?skip=0&limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	page := decode[models.PostListResponse](t, rec)
	if page.Total != 3 || len(page.Posts) != 1 || page.Posts[0].ID != newest.ID {
		t.Fatalf("unexpected page: total=%d posts=%+v", page.Total, page.Posts)
	}

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	if page = decode[models.PostListResponse](t, rec); len(page.Posts) != 3 {
		t.Fatalf("expected all posts without trailing slash, got %d", len(page.Posts))
	}

	if rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/posts/?limit=abc", nil)); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad limit, got %d", rec.Code)
	}
}

func TestEngagementFlow(t *testing.T) {
	ts := newTestServer(t)
	post := ts.createPost(t, "Launch")
	base := fmt.Sprintf("/api/posts/%d", post.ID)

	for _, user := range []string{"A", "B", "A"} {
		// delete first so repeat likes append a fresh row
		ts.form(http.MethodDelete, base+"/reactions", url.Values{"user": {user}, "reaction": {"like"}})
		if rec := ts.form(http.MethodPost, base+"/reactions", url.Values{"user": {user}, "reaction": {"like"}}); rec.Code != http.StatusCreated {
			t.Fatalf("react %s: %d %s", user, rec.Code, rec.Body.String())
		}
	}
	rec := ts.form(http.MethodPost, base+"/reactions", url.Values{"user": {"A"}, "reaction": {"LIKE"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected existing reaction to answer 201, got %d", rec.Code)
	}
	if existing := decode[models.Reaction](t, rec); existing.Reaction != "like" {
		t.Fatalf("expected stored reaction to be returned, got %+v", existing)
	}
	var reactionRows int64
	ts.db.Model(&models.Reaction{}).Count(&reactionRows)
	if reactionRows != 2 {
		t.Fatalf("expected no duplicate row, got %d reactions", reactionRows)
	}

	for _, user := range []string{"C", "B", "C"} {
		if rec := ts.form(http.MethodPost, base+"/views", url.Values{"user": {user}}); rec.Code != http.StatusCreated {
			t.Fatalf("view: %d %s", rec.Code, rec.Body.String())
		}
	}
	rec = ts.form(http.MethodPost, base+"/replies", url.Values{"user": {"B"}, "content": {"Congrats"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reply: %d %s", rec.Code, rec.Body.String())
	}
	if reply := decode[models.Reply](t, rec); reply.Content != "Congrats" || reply.PostID != post.ID {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	rec = ts.form(http.MethodPost, base+"/shares", url.Values{"user": {"C"}, "platform": {"teams"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("share: %d %s", rec.Code, rec.Body.String())
	}
	if share := decode[models.Share](t, rec); share.Platform == nil || *share.Platform != "teams" {
		t.Fatalf("unexpected share: %+v", share)
	}

	got := decode[models.PostResponse](t, ts.do(httptest.NewRequest(http.MethodGet, base, nil)))
	if strings.Join(got.LikedUsers, ",") != "B,A" {
		t.Fatalf("expected liked_users [B A], got %v", got.LikedUsers)
	}
	if strings.Join(got.SeenBy, ",") != "B,C" {
		t.Fatalf("expected seen_by [B C], got %v", got.SeenBy)
	}
	if got.ViewsCount != 3 || got.RepliesCount != 1 || got.SharesCount != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}

	list := decode[models.PostListResponse](t, ts.do(httptest.NewRequest(http.MethodGet, "/api/posts/", nil)))
	if len(list.Posts) != 1 || list.Posts[0].ViewsCount != 3 || list.Posts[0].SharesCount != 1 {
		t.Fatalf("list counts differ from single post: %+v", list.Posts)
	}

	replies := decode[[]models.Reply](t, ts.do(httptest.NewRequest(http.MethodGet, base+"/replies", nil)))
	if len(replies) != 1 {
		t.Fatalf("expected one reply, got %+v", replies)
	}
}

func TestRemoveReaction(t *testing.T) {
	ts := newTestServer(t)
	post := ts.createPost(t, "p")
	path := fmt.Sprintf("/api/posts/%d/reactions", post.ID)

	rec := ts.form(http.MethodDelete, path, url.Values{"user": {"A"}, "reaction": {"like"}})
	if body := decode[map[string]any](t, rec); body["status"] != "not_found" {
		t.Fatalf("expected not_found, got %v", body)
	}

	ts.form(http.MethodPost, path, url.Values{"user": {"A"}, "reaction": {"Like"}})
	rec = ts.form(http.MethodDelete, path, url.Values{"user": {"A"}, "reaction": {"LIKE"}})
	body := decode[map[string]any](t, rec)
	if body["status"] != "deleted" || body["deleted"].(float64) != 1 {
		t.Fatalf("expected one deletion, got %v", body)
	}

	req := httptest.NewRequest(http.MethodDelete, path+"?user=A&reaction=like", nil)
	if body := decode[map[string]any](t, ts.do(req)); body["status"] != "not_found" {
		t.Fatalf("expected query form to be accepted, got %v", body)
	}
}

func TestUpdatePost(t *testing.T) {
	ts := newTestServer(t)
	post := ts.createPost(t, "Draft", upload{name: "a.txt", contentType: "text/plain", body: "a"})
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	rec := ts.multipart(t, http.MethodPut, path, map[string]string{"announce_type": "urgent"}, upload{name: "b.bin", body: "bb"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[models.PostResponse](t, rec)
	if got.Title != "Draft" || got.AnnounceType == nil || *got.AnnounceType != "urgent" {
		t.Fatalf("unexpected post after update: %+v", got)
	}
	if len(got.Attachments) != 2 || got.Attachments[1].ContentType != "application/octet-stream" {
		t.Fatalf("expected appended attachment with default type, got %+v", got.Attachments)
	}

	if rec := ts.multipart(t, http.MethodPut, "/api/posts/999", map[string]string{"title": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing post, got %d", rec.Code)
	}
}

func TestEmptyOptionalFieldsAreAbsent(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.multipart(t, http.MethodPost, "/api/posts/", map[string]string{
		"title": "Notice", "author": "hr", "description": "keep", "announce_type": "",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	post := decode[models.PostResponse](t, rec)
	if post.AnnounceType != nil {
		t.Fatalf("expected empty announce_type to be stored as null, got %q", *post.AnnounceType)
	}

	rec = ts.multipart(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), map[string]string{"description": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[models.PostResponse](t, rec)
	if got.Description == nil || *got.Description != "keep" {
		t.Fatalf("expected empty description to leave the stored value, got %v", got.Description)
	}
}

func TestDeletePost(t *testing.T) {
	ts := newTestServer(t)
	post := ts.createPost(t, "Gone", upload{name: "a.txt", body: "a"})
	path := fmt.Sprintf("/api/posts/%d", post.ID)
	ts.form(http.MethodPost, path+"/views", url.Values{"user": {"A"}})

	if rec := ts.do(httptest.NewRequest(http.MethodDelete, path, nil)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := ts.do(httptest.NewRequest(http.MethodDelete, path, nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
	var views int64
	ts.db.Model(&models.PostView{}).Count(&views)
	if views != 0 {
		t.Fatalf("expected views removed with the post, got %d", views)
	}
}

func TestChildEndpointsRequirePost(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		method, path string
		values       url.Values
	}{
		{http.MethodPost, "/api/posts/77/replies", url.Values{"user": {"a"}, "content": {"c"}}},
		{http.MethodGet, "/api/posts/77/replies", nil},
		{http.MethodPost, "/api/posts/77/shares", url.Values{"user": {"a"}}},
		{http.MethodPost, "/api/posts/77/reactions", url.Values{"user": {"a"}, "reaction": {"like"}}},
		{http.MethodDelete, "/api/posts/77/reactions", url.Values{"user": {"a"}, "reaction": {"like"}}},
		{http.MethodPost, "/api/posts/77/views", url.Values{"user": {"a"}}},
		{http.MethodGet, "/api/posts/77", nil},
	}
	for _, tc := range cases {
		if rec := ts.form(tc.method, tc.path, tc.values); rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
	}

	if rec := ts.form(http.MethodPost, "/api/posts/abc/views", url.Values{"user": {"a"}}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-integer id, got %d", rec.Code)
	}
	post := ts.createPost(t, "p")
	if rec := ts.form(http.MethodPost, fmt.Sprintf("/api/posts/%d/views", post.ID), url.Values{}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing user, got %d", rec.Code)
	}
}

func TestHealthAndRoot(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if body := decode[map[string]string](t, rec); body["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", body)
	}
	rec = ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if body := decode[map[string]string](t, rec); body["message"] != "Intranet API" {
		t.Fatalf("unexpected root body: %v", body)
	}
}

func (ts *testServer) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return ts.do(req)
}

func TestDocumentsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.json(http.MethodPost, "/api/documents/", `{"name":"Handbook","link":"https://sharepoint.example/handbook"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	doc := decode[models.Document](t, rec)
	if doc.Name != "Handbook" || doc.Description != nil || doc.LastUpdated.IsZero() {
		t.Fatalf("unexpected document: %+v", doc)
	}
	path := fmt.Sprintf("/api/documents/%d", doc.ID)

	rec = ts.json(http.MethodPut, path, `{"description":"Policies"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Document](t, rec); got.Description == nil || *got.Description != "Policies" || got.Link != doc.Link {
		t.Fatalf("unexpected document after update: %+v", got)
	}

	list := decode[models.DocumentListResponse](t, ts.do(httptest.NewRequest(http.MethodGet, "/api/documents", nil)))
	if list.Total != 1 || len(list.Documents) != 1 || list.Documents[0].ID != doc.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if rec := ts.do(httptest.NewRequest(http.MethodDelete, path, nil)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDocumentValidation(t *testing.T) {
	ts := newTestServer(t)
	long := strings.Repeat("x", 256)

	for name, body := range map[string]string{
		"missing link": `{"name":"Handbook"}`,
		"empty name":   `{"name":"","link":"https://sharepoint.example"}`,
		"long name":    `{"name":"` + long + `","link":"https://sharepoint.example"}`,
		"long link":    `{"name":"n","link":"` + strings.Repeat("l", 501) + `"}`,
	} {
		if rec := ts.json(http.MethodPost, "/api/documents/", body); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", name, rec.Code)
		}
	}

	doc := decode[models.Document](t, ts.json(http.MethodPost, "/api/documents/", `{"name":"n","link":"l"}`))
	if rec := ts.json(http.MethodPut, fmt.Sprintf("/api/documents/%d", doc.ID), `{"name":""}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty name on update, got %d", rec.Code)
	}
	if rec := ts.json(http.MethodPut, "/api/documents/999", `{"name":"x"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing document, got %d", rec.Code)
	}
}
