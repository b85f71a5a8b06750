package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorekeeper/database"
	adminapi "lorekeeper/internal/api/admin"
	authapi "lorekeeper/internal/api/auth"
	storiesapi "lorekeeper/internal/api/stories"
	usersapi "lorekeeper/internal/api/users"
	worksapi "lorekeeper/internal/api/works"
	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/users"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/infra/cache"
	"lorekeeper/internal/testutil"
)

const secret = "route-secret"

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	c, err := cache.New(cache.Options{}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = database.SeedAdmin(db, "keeper", "first-pass1")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret: secret,
		Auth:      authapi.NewHandler(db, secret, log),
		Users:     usersapi.NewHandler(db, log),
		Admin:     adminapi.NewHandler(db),
		Stories:   storiesapi.NewHandler(catalog.NewStories(db, log, c), assets.Passthrough{}, log),
		Works:     worksapi.NewHandler(catalog.NewWorks(db, log, c), assets.Passthrough{}, log),
	})

	token, err := authapi.IssueToken([]byte(secret), users.User{ID: 1, Name: "keeper", Role: users.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	return &client{t: t, r: r, token: token}
}

func (c *client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

type idResp struct {
	ID uint `json:"id"`
}

func (c *client) createSet(prefix, name string, parentID uint) uint {
	c.t.Helper()
	var out idResp
	code := c.do(http.MethodPost, "/api/"+prefix, map[string]interface{}{"name": name, "parentId": parentID}, &out)
	require.Equal(c.t, http.StatusCreated, code)
	return out.ID
}

func (c *client) createStory(title string, setIDs ...uint) uint {
	c.t.Helper()
	var out idResp
	code := c.do(http.MethodPost, "/api/stories", map[string]interface{}{
		"title": title, "content": "text", "setIds": setIDs,
	}, &out)
	require.Equal(c.t, http.StatusCreated, code)
	return out.ID
}

func TestWritesNeedAdmin(t *testing.T) {
	c := newClient(t)
	c.token = ""
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/story-sets", map[string]string{"name": "x"}, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/story-sets", nil, nil))
}

func TestStorySetFlow(t *testing.T) {
	c := newClient(t)
	root := c.createSet("story-sets", "Root", 0)
	child := c.createSet("story-sets", "Child", root)
	c.createStory("A", root)
	b := c.createStory("B", child)

	var forest []struct {
		ID       uint `json:"id"`
		Children []struct {
			ID       uint          `json:"id"`
			Children []interface{} `json:"children"`
		} `json:"children"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/story-sets", nil, &forest))
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, child, forest[0].Children[0].ID)
	assert.NotNil(t, forest[0].Children[0].Children)

	var detail struct {
		ID       uint `json:"id"`
		Children []struct {
			ID uint `json:"id"`
		} `json:"children"`
		Items []struct {
			ID   uint `json:"id"`
			Sort int  `json:"sort"`
		} `json:"items"`
		Count   int64 `json:"count"`
		PageNow int   `json:"page_now"`
		PageAll int   `json:"page_all"`
	}
	path := fmt.Sprintf("/api/story-sets/%d?includeDescendants=1&size=1&page=2", root)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, path, nil, &detail))
	assert.EqualValues(t, 2, detail.Count)
	assert.Equal(t, 2, detail.PageNow)
	assert.Equal(t, 2, detail.PageAll)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, b, detail.Items[0].ID)
	require.Len(t, detail.Children, 1)

	code := c.do(http.MethodPut, fmt.Sprintf("/api/story-sets/%d", root), map[string]interface{}{"parentId": child}, nil)
	assert.Equal(t, http.StatusBadRequest, code, "cycle")

	code = c.do(http.MethodDelete, fmt.Sprintf("/api/story-sets/%d", root), nil, nil)
	assert.Equal(t, http.StatusConflict, code)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/story-sets/999", nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/story-sets/abc", nil, nil))
}

func TestStoryMembershipRoutes(t *testing.T) {
	c := newClient(t)
	set := c.createSet("story-sets", "Main", 0)
	a := c.createStory("A")
	b := c.createStory("B")

	rel := map[string]interface{}{"storyId": a, "setId": set}
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/story-set-rel/add", rel, nil))
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/story-set-rel/add", rel, nil))
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/story-set-rel/add", map[string]interface{}{"storyId": b, "setId": set}, nil))

	order := map[string]interface{}{"setId": set, "storyOrders": []map[string]interface{}{
		{"storyId": a, "sort": 2}, {"storyId": b, "sort": 1},
	}}
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/story-set-rel/order", order, nil))

	var detail struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/story-sets/%d", set), nil, &detail))
	require.Len(t, detail.Items, 2)
	assert.Equal(t, b, detail.Items[0].ID)

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/story-set-rel/remove", rel, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/story-set-rel/remove", rel, nil))
}

func TestStoryRelationRoutes(t *testing.T) {
	c := newClient(t)
	a := c.createStory("A")
	b := c.createStory("B")

	var created idResp
	code := c.do(http.MethodPost, fmt.Sprintf("/api/stories/%d/relations", a),
		map[string]interface{}{"relatedId": b, "relationType": "prequel", "note": "first"}, &created)
	require.Equal(t, http.StatusCreated, code)

	var rels []struct {
		RelatedID    uint   `json:"relatedId"`
		RelationType string `json:"relationType"`
		Note         string `json:"note"`
		Related      struct {
			Title string `json:"title"`
		} `json:"related"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d/relations", b), nil, &rels))
	require.Len(t, rels, 1)
	assert.Equal(t, a, rels[0].RelatedID)
	assert.Equal(t, "sequel", rels[0].RelationType)
	assert.Equal(t, "first", rels[0].Note)
	assert.Equal(t, "A", rels[0].Related.Title)

	code = c.do(http.MethodPost, fmt.Sprintf("/api/stories/%d/relations", a),
		map[string]interface{}{"relatedId": a, "relationType": "related"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, fmt.Sprintf("/api/story-relations/%d", created.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, fmt.Sprintf("/api/story-relations/%d", created.ID), nil, nil))
}

func TestStoryListPublishing(t *testing.T) {
	c := newClient(t)
	past := time.Now().Add(-time.Hour)
	var live idResp
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/stories",
		map[string]interface{}{"title": "Live", "content": "x", "onlineAt": past}, &live))
	c.createStory("Draft")

	var list struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
		Count int64 `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stories?all=1", nil, &list))
	assert.EqualValues(t, 2, list.Count)

	c.token = ""
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stories?all=1", nil, &list))
	assert.EqualValues(t, 1, list.Count)
	require.Len(t, list.Items, 1)
	assert.Equal(t, live.ID, list.Items[0].ID)
}

func TestStoryCreateRollback(t *testing.T) {
	c := newClient(t)
	code := c.do(http.MethodPost, "/api/stories", map[string]interface{}{
		"title": "T", "content": "c", "setIds": []uint{404},
	}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var list struct {
		Count int64 `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stories?all=1", nil, &list))
	assert.Zero(t, list.Count)
}

func TestWorksRoutes(t *testing.T) {
	c := newClient(t)
	set := c.createSet("works-sets", "Paintings", 0)

	var work struct {
		ID     uint     `json:"id"`
		Tags   []string `json:"tags"`
		SetIDs []uint   `json:"setIds"`
	}
	code := c.do(http.MethodPost, "/api/works", map[string]interface{}{
		"name": "Harbor", "tags": []string{"oil", "sea"}, "setIds": []uint{set},
	}, &work)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []uint{set}, work.SetIDs)

	var list struct {
		Count int64 `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/works?all=1&tag=sea", nil, &list))
	assert.EqualValues(t, 1, list.Count)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/works?all=1&tag=se", nil, &list))
	assert.EqualValues(t, 0, list.Count)

	rel := map[string]interface{}{"worksId": work.ID, "setId": set}
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/works-set-rel/remove", rel, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/works-set-rel/remove", rel, nil))
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/works-set-rel/add", rel, nil))

	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, fmt.Sprintf("/api/works/%d", work.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, fmt.Sprintf("/api/works/%d", work.ID), nil, nil))
}

func TestAccountAndDashboard(t *testing.T) {
	c := newClient(t)
	set := c.createSet("story-sets", "Main", 0)
	c.createStory("A", set)

	var me struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/me", nil, &me))
	assert.Equal(t, "keeper", me.Name)

	var stats adminapi.AdminStats
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/admin/dashboard", nil, &stats))
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.Stories.Sets)
	assert.EqualValues(t, 1, stats.Stories.Items)
	assert.EqualValues(t, 1, stats.Stories.Memberships)

	weak := map[string]string{"current_password": "first-pass1", "new_password": "short"}
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/me/password", weak, nil))
	wrong := map[string]string{"current_password": "nope", "new_password": "second-pass2"}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/me/password", wrong, nil))
	good := map[string]string{"current_password": "first-pass1", "new_password": "second-pass2"}
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/me/password", good, nil))

	c.token = ""
	code := c.do(http.MethodPost, "/api/signin", map[string]string{"name": "keeper", "password": "second-pass2"}, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDraftsHiddenFromAnonymousReaders(t *testing.T) {
	c := newClient(t)
	set := c.createSet("story-sets", "Main", 0)
	past := time.Now().Add(-time.Hour)

	var live idResp
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/stories",
		map[string]interface{}{"title": "Live", "content": "x", "onlineAt": past, "setIds": []uint{set}}, &live))
	draft := c.createStory("Draft", set)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, fmt.Sprintf("/api/stories/%d/relations", live.ID),
		map[string]interface{}{"relatedId": draft, "relationType": "prequel"}, nil))

	wset := c.createSet("works-sets", "Sketches", 0)
	var work idResp
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/works",
		map[string]interface{}{"name": "Unfinished", "setIds": []uint{wset}}, &work))

	type detail struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
		Count int64 `json:"count"`
	}
	var d detail
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/story-sets/%d", set), nil, &d))
	assert.EqualValues(t, 2, d.Count, "admin sees drafts")

	var rels []interface{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d/relations", live.ID), nil, &rels))
	assert.Len(t, rels, 1)

	c.token = ""
	d = detail{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/story-sets/%d", set), nil, &d))
	assert.EqualValues(t, 1, d.Count)
	require.Len(t, d.Items, 1)
	assert.Equal(t, live.ID, d.Items[0].ID)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d", live.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d", draft), nil, nil))

	rels = nil
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d/relations", live.ID), nil, &rels))
	assert.Empty(t, rels)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, fmt.Sprintf("/api/stories/%d/relations", draft), nil, nil))

	d = detail{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/works-sets/%d", wset), nil, &d))
	assert.Zero(t, d.Count)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, fmt.Sprintf("/api/works/%d", work.ID), nil, nil))
}

func TestUnpublishStory(t *testing.T) {
	c := newClient(t)
	past := time.Now().Add(-time.Hour)
	var live idResp
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/stories",
		map[string]interface{}{"title": "Live", "content": "x", "onlineAt": past}, &live))

	var got struct {
		OnlineAt *time.Time `json:"onlineAt"`
	}
	path := fmt.Sprintf("/api/stories/%d", live.ID)
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, path, map[string]interface{}{"clearOnlineAt": true}, &got))
	assert.Nil(t, got.OnlineAt)

	assert.Equal(t, http.StatusBadRequest,
		c.do(http.MethodPut, path, map[string]interface{}{"clearOnlineAt": true, "onlineAt": past}, nil))

	c.token = ""
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, path, nil, nil))
}
