package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/recyclehub/internal/api"
	"github.com/erazemk/recyclehub/internal/db"
	"github.com/erazemk/recyclehub/internal/listing"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/store/sqlite"
	"github.com/erazemk/recyclehub/internal/upload"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := sqlite.New(db.NewTestDB(t))
	local, err := upload.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	router := api.NewRouter(
		service.NewItemService(st, upload.New(local, 0), nil),
		service.NewAccountService(st, "test-secret"),
		api.Config{},
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	ctx := context.Background()
	c := New(srv.URL)
	_, err := c.Register(ctx, "Asha", "asha@example.com", "password123", model.RoleUser)
	require.NoError(t, err)
	role, err := c.Login(ctx, "asha@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, role)
	return c
}

func fields(name string) model.ItemFields {
	return model.ItemFields{
		Name:          name,
		Description:   "clean and sorted",
		Category:      "Plastic",
		City:          "Delhi",
		ContactNumber: "9876543210",
	}
}

func TestClientItemLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	created, err := c.CreateItem(ctx, fields("Plastic Bottle"))
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusAvailable, created.Status)

	got, err := c.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	updated, err := c.SetStatus(ctx, created.ID, model.ItemStatusRecycled)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRecycled, updated.Status)

	require.NoError(t, c.DeleteItem(ctx, created.ID))
	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClientCreateWithImage(t *testing.T) {
	srv := newTestServer(t)
	c := loggedIn(t, srv)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	item, err := c.CreateItemWithImage(context.Background(), fields("Jar"), "jar.png", &buf)
	require.NoError(t, err)
	assert.Contains(t, item.Image, upload.URLPrefix)
}

func TestClientAPIError(t *testing.T) {
	srv := newTestServer(t)
	c := loggedIn(t, srv)

	_, err := c.SetStatus(context.Background(), "missing", model.ItemStatusRecycled)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	f := fields("x")
	f.ContactNumber = ""
	_, err = c.CreateItem(context.Background(), f)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "contact_number")
}

func TestClientDrivesListingView(t *testing.T) {
	srv := newTestServer(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	_, err := c.CreateItem(ctx, fields("Zebra Print Bag"))
	require.NoError(t, err)
	bottle, err := c.CreateItem(ctx, fields("Apple Juice Bottle"))
	require.NoError(t, err)

	view := listing.NewView(c)
	require.NoError(t, view.Load(ctx))

	got := view.Items(listing.Query{Sort: listing.SortNameAsc})
	require.Len(t, got, 2)
	assert.Equal(t, "Apple Juice Bottle", got[0].Name)

	require.NoError(t, view.MarkRecycled(ctx, bottle.ID))
	recycled := view.Items(listing.Query{Status: model.ItemStatusRecycled})
	require.Len(t, recycled, 1)
	assert.Equal(t, bottle.ID, recycled[0].ID)
}
