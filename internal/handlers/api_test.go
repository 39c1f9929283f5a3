package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chapterpress/internal/models"
)

func TestAPI_ListCategories(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rr := serve(env.api.ListCategories, http.MethodGet, "/api/categories", jsonRequest(t, http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cats := decodeBody[[]models.Category](t, rr)
	require.Len(t, cats, 1)
	assert.Equal(t, "ip-basics", cats[0].Slug)
}

func TestAPI_ListCategories_Empty(t *testing.T) {
	env := newTestEnv(t)
	rr := serve(env.api.ListCategories, http.MethodGet, "/api/categories", jsonRequest(t, http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAPI_GetCategory_ByIDOrSlug(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	for _, key := range []string{s.category.ID, "ip-basics"} {
		rr := serve(env.api.GetCategory, http.MethodGet, "/api/categories/{id}", jsonRequest(t, http.MethodGet, "/api/categories/"+key, nil))
		require.Equal(t, http.StatusOK, rr.Code, key)
		assert.Equal(t, s.category.ID, decodeBody[models.Category](t, rr).ID)
	}

	rr := serve(env.api.GetCategory, http.MethodGet, "/api/categories/{id}", jsonRequest(t, http.MethodGet, "/api/categories/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeNotFound, decodeBody[errorEnvelope](t, rr).Error.Code)
}

func TestAPI_CreateCategory(t *testing.T) {
	env := newTestEnv(t)

	req := asAdmin(jsonRequest(t, http.MethodPost, "/api/categories", map[string]any{"name": "Routing Basics", "order": 2}))
	rr := serve(env.api.CreateCategory, http.MethodPost, "/api/categories", req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	got := decodeBody[models.Category](t, rr)
	assert.Equal(t, "routing-basics", got.Slug)
	assert.Equal(t, 2, got.Order)
	assert.NotEmpty(t, got.ID)
}

func TestAPI_CreateCategory_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, http.MethodPost, "/api/categories", map[string]any{"name": "Sneaky"})
	rr := serve(env.api.CreateCategory, http.MethodPost, "/api/categories", req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, env.mem.Writes)
}

func TestAPI_CreateCategory_Validation(t *testing.T) {
	env := newTestEnv(t)

	req := asAdmin(jsonRequest(t, http.MethodPost, "/api/categories", map[string]any{"description": "no name"}))
	rr := serve(env.api.CreateCategory, http.MethodPost, "/api/categories", req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody[errorEnvelope](t, rr)
	assert.Equal(t, codeValidation, body.Error.Code)
	assert.Contains(t, body.Error.Fields, "name")
}

func TestAPI_UpdateCategory_FullReplace(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	req := asAdmin(jsonRequest(t, http.MethodPut, "/api/categories/"+s.category.ID, map[string]any{"name": "IP Fundamentals", "slug": "ip-fundamentals"}))
	rr := serve(env.api.UpdateCategory, http.MethodPut, "/api/categories/{id}", req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeBody[models.Category](t, rr)
	assert.Equal(t, "IP Fundamentals", got.Name)
	assert.Equal(t, "ip-fundamentals", got.Slug)
	assert.Empty(t, got.Description)
}

func TestAPI_DeleteCategory_HasDependents(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	req := asAdmin(jsonRequest(t, http.MethodDelete, "/api/categories/"+s.category.ID, nil))
	rr := serve(env.api.DeleteCategory, http.MethodDelete, "/api/categories/{id}", req)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeHasDependents, decodeBody[errorEnvelope](t, rr).Error.Code)
}

func TestAPI_ListSeries_FilterByCategory(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	rr := serve(env.api.ListSeries, http.MethodGet, "/api/series", jsonRequest(t, http.MethodGet, "/api/series?categoryId="+s.category.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]models.Series](t, rr), 1)

	rr = serve(env.api.ListSeries, http.MethodGet, "/api/series", jsonRequest(t, http.MethodGet, "/api/series?categoryId=other", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]models.Series](t, rr))
}

func TestAPI_CreateSeries_UnknownCategory(t *testing.T) {
	env := newTestEnv(t)

	req := asAdmin(jsonRequest(t, http.MethodPost, "/api/series", map[string]any{"name": "Orphan", "categoryId": "id-9999"}))
	rr := serve(env.api.CreateSeries, http.MethodPost, "/api/series", req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[errorEnvelope](t, rr).Error.Fields, "categoryId")
}

func TestAPI_GetChapter_Detail(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rr := serve(env.api.GetChapter, http.MethodGet, "/api/chapters/{id}", jsonRequest(t, http.MethodGet, "/api/chapters/what-is-ip", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[models.ChapterDetail](t, rr)
	require.NotNil(t, got.Series)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Overview", got.Series.Name)
	assert.Equal(t, "IP Basics", got.Category.Name)
}

func TestAPI_GetChapter_DraftHiddenFromAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rr := serve(env.api.GetChapter, http.MethodGet, "/api/chapters/{id}", jsonRequest(t, http.MethodGet, "/api/chapters/subnets", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(env.api.GetChapter, http.MethodGet, "/api/chapters/{id}", asAdmin(jsonRequest(t, http.MethodGet, "/api/chapters/subnets", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPI_ListChapters(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)
	target := "/api/chapters?seriesId=" + s.series.ID

	rr := serve(env.api.ListChapters, http.MethodGet, "/api/chapters", jsonRequest(t, http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]models.Chapter](t, rr), 1)

	rr = serve(env.api.ListChapters, http.MethodGet, "/api/chapters", asAdmin(jsonRequest(t, http.MethodGet, target, nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	chapters := decodeBody[[]models.Chapter](t, rr)
	require.Len(t, chapters, 2)
	assert.Equal(t, "what-is-ip", chapters[0].Slug)
	assert.Equal(t, "subnets", chapters[1].Slug)
}

func TestAPI_CreateChapter_BadVideoURL(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	req := asAdmin(jsonRequest(t, http.MethodPost, "/api/chapters", map[string]any{
		"title": "Routing", "content": "x", "seriesId": s.series.ID, "videoUrl": "javascript:alert(1)",
	}))
	rr := serve(env.api.CreateChapter, http.MethodPost, "/api/chapters", req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[errorEnvelope](t, rr).Error.Fields, "videoUrl")
}

func TestAPI_PatchChapter(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)
	pattern := "/api/chapters/{id}"

	req := asAdmin(jsonRequest(t, http.MethodPatch, "/api/chapters/"+s.draft.ID, map[string]any{}))
	rr := serve(env.api.PatchChapter, http.MethodPatch, pattern, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[errorEnvelope](t, rr).Error.Fields, "published")

	req = asAdmin(jsonRequest(t, http.MethodPatch, "/api/chapters/"+s.draft.ID, map[string]any{"published": true}))
	rr = serve(env.api.PatchChapter, http.MethodPatch, pattern, req)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[models.Chapter](t, rr)
	assert.True(t, got.Published)
	assert.Equal(t, s.draft.Content, got.Content)
}

func TestAPI_DeleteChapter(t *testing.T) {
	env := newTestEnv(t)
	s := env.seed(t)

	req := asAdmin(jsonRequest(t, http.MethodDelete, "/api/chapters/"+s.chapter.ID, nil))
	rr := serve(env.api.DeleteChapter, http.MethodDelete, "/api/chapters/{id}", req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = serve(env.api.DeleteChapter, http.MethodDelete, "/api/chapters/{id}", req.Clone(req.Context()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mem.Err = errors.New("socket closed")

	rr := serve(env.api.ListCategories, http.MethodGet, "/api/categories", jsonRequest(t, http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "socket closed")
}

func TestAPI_Tree(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rr := serve(env.api.Tree, http.MethodGet, "/api/tree", jsonRequest(t, http.MethodGet, "/api/tree", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	tree := decodeBody[[]models.CategoryNode](t, rr)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Series, 1)
	assert.Len(t, tree[0].Series[0].Chapters, 1)
}

func TestAPI_Stats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rr := serve(env.api.Stats, http.MethodGet, "/api/stats", jsonRequest(t, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(env.api.Stats, http.MethodGet, "/api/stats", asAdmin(jsonRequest(t, http.MethodGet, "/api/stats", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.Stats{Categories: 1, Series: 1, Chapters: 2, Published: 1}, decodeBody[models.Stats](t, rr))
}
