package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/db/controller/role"
	"github.com/shopkeep/shopkeep/internal/db/controller/store"
	"github.com/shopkeep/shopkeep/internal/db/models"
	"github.com/shopkeep/shopkeep/internal/db/testdb"
	"github.com/shopkeep/shopkeep/internal/web"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

type env struct {
	app      *fiber.App
	db       *gorm.DB
	store    *models.Store
	owner    models.User
	staff    models.User
	outsider models.User
	tokens   map[string]string
}

func newEnv(t *testing.T, upstreams map[string]string) *env {
	t.Helper()

	session.Init(nil, time.Hour)

	db := testdb.Open(t)
	e := &env{
		db:       db,
		owner:    testdb.User(t, db, "owner"),
		staff:    testdb.User(t, db, "staff"),
		outsider: testdb.User(t, db, "outsider"),
		tokens:   map[string]string{},
	}

	var err error

	e.store, err = store.Create(context.Background(), db, e.owner.ID, "Main Store")
	require.NoError(t, err)

	cfg := &config.Config{
		DevMode: true,
		Title:   "shopkeep-test",
		Webserver: config.Webserver{
			Port:      8080,
			URL:       "http://localhost:8080",
			Session:   config.Session{ExpiryTime: time.Hour},
			Upstreams: upstreams,
		},
	}

	e.app = web.New(cfg, db).App

	for _, u := range []models.User{e.owner, e.staff, e.outsider} {
		e.tokens[u.ID] = e.login(t, u.Username, "secret")
	}

	return e
}

func (e *env) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.do(t, "", fiber.MethodPost, "/api/auth/login", fiber.Map{"username": username, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}

	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	require.Equal(t, username, out.User.Username)

	return out.Token
}

// do sends a JSON request with the session token of userID as bearer.
func (e *env) do(t *testing.T, userID, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	if token := e.tokens[userID]; token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func (e *env) path(format string, args ...any) string {
	return "/api/stores/" + e.store.ID + fmt.Sprintf(format, args...)
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCheckAliveAndMetrics(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.do(t, "", fiber.MethodGet, "/checkalive", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// one decision so the counter is exported
	resp = e.do(t, "", fiber.MethodGet, e.path("/authorize?permission=orders:view"), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, "", fiber.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "authorization_decisions_total")
}

func TestLoginRejected(t *testing.T) {
	e := newEnv(t, nil)

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", e.outsider.ID).Update("active", false).Error)

	testCases := []struct {
		name     string
		body     any
		expected int
	}{
		{name: "wrong password", body: fiber.Map{"username": "owner", "password": "nope"}, expected: fiber.StatusUnauthorized},
		{name: "unknown user", body: fiber.Map{"username": "ghost", "password": "secret"}, expected: fiber.StatusUnauthorized},
		{name: "disabled user", body: fiber.Map{"username": "outsider", "password": "secret"}, expected: fiber.StatusUnauthorized},
		{name: "missing password", body: fiber.Map{"username": "owner"}, expected: fiber.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.do(t, "", fiber.MethodPost, "/api/auth/login", tc.body)
			assert.Equal(t, tc.expected, resp.StatusCode)
		})
	}
}

func TestLogoutEndsSession(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.do(t, e.owner.ID, fiber.MethodGet, "/api/permissions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodGet, "/api/permissions", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionCookie(t *testing.T) {
	e := newEnv(t, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/permissions?search=orders", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.tokens[e.staff.ID]})

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var categories []struct {
		Name string `json:"name"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Sales", categories[0].Name)
}

func TestRoleLifecycle(t *testing.T) {
	e := newEnv(t, nil)

	// unauthenticated and unassigned callers are stopped before any mutation
	resp := e.do(t, "", fiber.MethodPost, e.path("/roles"), fiber.Map{"name": "X", "permissions": []string{"orders:view"}})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, e.outsider.ID, fiber.MethodPost, e.path("/roles"), fiber.Map{"name": "X", "permissions": []string{"orders:view"}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var errBody map[string]string
	decode(t, resp, &errBody)
	assert.Equal(t, "Forbidden", errBody["error"])

	// owner creates a role; unknown permissions are dropped
	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/roles"), fiber.Map{
		"name":        "Catalog Manager",
		"permissions": []string{"products:manage", "taxonomies:view", "brands:view", "rockets:launch"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created role.Detail
	decode(t, resp, &created)
	assert.Equal(t, []string{"brands:view", "products:manage", "taxonomies:view"}, created.Permissions)

	// same name again conflicts
	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/roles"), fiber.Map{"name": "Catalog Manager"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// validation
	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/roles"), fiber.Map{"permissions": []string{"orders:view"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	rolePath := e.path("/roles/%d", created.ID)

	// assign to staff
	resp = e.do(t, e.owner.ID, fiber.MethodPut, rolePath+"/assignments/"+e.staff.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the catalog manager may not read or change roles
	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// but holds the expanded product permissions
	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/permissions/effective"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var effective struct {
		Owner       bool     `json:"owner"`
		Permissions []string `json:"permissions"`
	}

	decode(t, resp, &effective)
	assert.False(t, effective.Owner)
	assert.Contains(t, effective.Permissions, "products:delete")
	assert.NotContains(t, effective.Permissions, "brands:edit")

	// delete is refused while assigned and the role is untouched
	resp = e.do(t, e.owner.ID, fiber.MethodDelete, rolePath, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &errBody)
	assert.Equal(t, role.ErrRoleInUse.Error(), errBody["error"])

	resp = e.do(t, e.owner.ID, fiber.MethodGet, rolePath, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// full replacement of the permission set
	resp = e.do(t, e.owner.ID, fiber.MethodPatch, rolePath, fiber.Map{"permissions": []string{"orders:view"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var patched role.Detail
	decode(t, resp, &patched)
	assert.Equal(t, []string{"orders:view"}, patched.Permissions)

	resp = e.do(t, e.owner.ID, fiber.MethodPatch, rolePath, fiber.Map{"permissions": []string{}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPatch, rolePath, fiber.Map{"permissions": []string{"bogus"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/authorize?permission=products:delete"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "the old permissions are gone after replacement")

	// unassign, then delete
	resp = e.do(t, e.owner.ID, fiber.MethodDelete, rolePath+"/assignments/"+e.staff.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodDelete, rolePath, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodGet, rolePath, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodGet, e.path("/roles/abc"), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRolesManagerDelegation(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	admin, err := role.Create(ctx, e.db, e.store.ID, role.Input{Name: "Role Admin", Permissions: []string{"roles:manage"}})
	require.NoError(t, err)
	require.NoError(t, role.Assign(ctx, e.db, e.store.ID, e.staff.ID, admin.ID))

	resp := e.do(t, e.staff.ID, fiber.MethodGet, e.path("/roles"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "roles:manage implies roles:view")

	var roles []role.Detail
	decode(t, resp, &roles)
	assert.Len(t, roles, 3)

	resp = e.do(t, e.staff.ID, fiber.MethodPost, e.path("/roles"), fiber.Map{"name": "Packer", "permissions": []string{"orders:edit"}})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestAuthorizeEndpoint(t *testing.T) {
	e := newEnv(t, nil)

	testCases := []struct {
		name       string
		userID     string
		permission string
		expected   int
		body       string
	}{
		{name: "anonymous", userID: "", permission: "orders:view", expected: fiber.StatusUnauthorized, body: "Unauthorized"},
		{name: "owner", userID: e.owner.ID, permission: "settings:edit", expected: fiber.StatusOK},
		{name: "unassigned", userID: e.outsider.ID, permission: "orders:view", expected: fiber.StatusForbidden, body: "Forbidden"},
		{name: "unknown permission", userID: e.owner.ID, permission: "orders:fly", expected: fiber.StatusBadRequest},
		{name: "missing permission", userID: e.owner.ID, permission: "", expected: fiber.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.do(t, tc.userID, fiber.MethodGet, e.path("/authorize?permission=%s", tc.permission), nil)
			assert.Equal(t, tc.expected, resp.StatusCode)

			if tc.body != "" {
				var out struct {
					Error string `json:"error"`
				}

				decode(t, resp, &out)
				assert.Equal(t, tc.body, out.Error)
			}
		})
	}
}

func TestStaffInviteAndRemove(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.do(t, e.staff.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.outsider.ID})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.staff.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// the default Viewer role grants every view permission
	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/authorize?permission=orders:edit"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.owner.ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodDelete, e.path("/staff/%s", e.staff.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodDelete, e.path("/staff/%s", e.owner.ID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStaffListing(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.do(t, e.staff.ID, fiber.MethodGet, e.path("/staff"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, "", fiber.MethodGet, e.path("/staff"), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.staff.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// the Viewer role holds roles:view, which is enough to see the staff
	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/staff"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var members []store.Member
	decode(t, resp, &members)
	require.Len(t, members, 1)
	assert.Equal(t, e.staff.ID, members[0].UserID)
	assert.Equal(t, "staff", members[0].Username)
	assert.Len(t, members[0].RoleIDs, 1)
}

func TestInviteWithExplicitRoles(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	recruiter, err := role.Create(ctx, e.db, e.store.ID, role.Input{Name: "Recruiter", Permissions: []string{"staff:manage"}})
	require.NoError(t, err)
	require.NoError(t, role.Assign(ctx, e.db, e.store.ID, e.staff.ID, recruiter.ID))

	roles, err := role.List(ctx, e.db, e.store.ID, store.ManagerRoleName)
	require.NoError(t, err)
	require.NotEmpty(t, roles)

	managerID := roles[0].ID

	// handing out the Manager role needs roles:manage on top of staff:manage
	resp := e.do(t, e.staff.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.staff.ID, "roleIds": []uint{managerID}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.outsider.ID, "roleIds": []uint{managerID}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodGet, e.path("/authorize?permission=roles:manage"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "a refused invite must not grant anything")

	// default roles need staff:manage only
	resp = e.do(t, e.staff.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.outsider.ID})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodPost, e.path("/staff"), fiber.Map{"userId": e.outsider.ID, "roleIds": []uint{managerID}})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.do(t, e.outsider.ID, fiber.MethodGet, e.path("/authorize?permission=roles:manage"), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStoresListing(t *testing.T) {
	e := newEnv(t, nil)

	second, err := store.Create(context.Background(), e.db, e.owner.ID, "Annex")
	require.NoError(t, err)

	resp := e.do(t, "", fiber.MethodGet, "/api/stores", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, e.owner.ID, fiber.MethodGet, "/api/stores", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var owned []models.Store
	decode(t, resp, &owned)
	require.Len(t, owned, 2)
	assert.Equal(t, second.ID, owned[0].ID)
	assert.Equal(t, e.store.ID, owned[1].ID)

	resp = e.do(t, e.staff.ID, fiber.MethodGet, "/api/stores", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var none []models.Store
	decode(t, resp, &none)
	assert.Empty(t, none)
}

func TestDeactivatedUserLosesSession(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	users := auth.NewLocalProvider(e.db)

	resp := e.do(t, e.owner.ID, fiber.MethodGet, e.path("/roles"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, users.SetActive(ctx, e.owner.ID, false))

	resp = e.do(t, e.owner.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// the session was dropped, reactivation needs a new login
	require.NoError(t, users.SetActive(ctx, e.owner.ID, true))

	resp = e.do(t, e.owner.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	e.tokens[e.owner.ID] = e.login(t, e.owner.Username, "secret")

	resp = e.do(t, e.owner.ID, fiber.MethodGet, e.path("/roles"), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestResourceGroups(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-User", r.Header.Get("X-Shopkeep-User"))
		w.Header().Set("X-Seen-Store", r.Header.Get("X-Shopkeep-Store"))
		w.Header().Set("X-Seen-Path", r.URL.Path)
		w.Header().Set("X-Seen-Authorization", r.Header.Get(fiber.HeaderAuthorization))
		w.Header().Set("X-Seen-Cookie", r.Header.Get(fiber.HeaderCookie))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer upstream.Close()

	e := newEnv(t, map[string]string{"orders": upstream.URL + "/"})
	ctx := context.Background()

	editor, err := role.Create(ctx, e.db, e.store.ID, role.Input{
		Name:        "Product Editor",
		Permissions: []string{"products:view", "products:edit", "orders:manage"},
	})
	require.NoError(t, err)
	require.NoError(t, role.Assign(ctx, e.db, e.store.ID, e.staff.ID, editor.ID))

	// products is guarded by products:create, which view and edit do not imply
	resp := e.do(t, e.staff.ID, fiber.MethodGet, e.path("/products/1"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// owner passes, but products has no upstream
	resp = e.do(t, e.owner.ID, fiber.MethodGet, e.path("/products/1"), nil)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)

	resp = e.do(t, "", fiber.MethodDelete, e.path("/orders/7"), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, e.outsider.ID, fiber.MethodDelete, e.path("/orders/7"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, e.staff.ID, fiber.MethodDelete, e.path("/orders/7"), nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, e.staff.ID, resp.Header.Get("X-Seen-User"))
	assert.Equal(t, e.store.ID, resp.Header.Get("X-Seen-Store"))
	assert.True(t, strings.HasSuffix(resp.Header.Get("X-Seen-Path"), "/orders/7"))
	assert.Empty(t, resp.Header.Get("X-Seen-Authorization"))

	// a cookie session is not forwarded either, other cookies are
	req := httptest.NewRequest(fiber.MethodGet, e.path("/orders/7"), nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.tokens[e.staff.ID]})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	resp, err = e.app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, e.staff.ID, resp.Header.Get("X-Seen-User"))
	assert.Empty(t, resp.Header.Get("X-Seen-Authorization"))
	assert.NotContains(t, resp.Header.Get("X-Seen-Cookie"), e.tokens[e.staff.ID])
	assert.Contains(t, resp.Header.Get("X-Seen-Cookie"), "theme=dark")
}
