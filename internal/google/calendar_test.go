package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"bookey/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI serves the handful of Calendar and Tasks endpoints the client uses.
type fakeAPI struct {
	query     map[string]string
	inserted  map[string]any
	deleted   string
	completed string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/events"):
		f.query = map[string]string{
			"timeMin": r.URL.Query().Get("timeMin"),
			"timeMax": r.URL.Query().Get("timeMax"),
		}
		io.WriteString(w, `{"items":[
			{"id":"timed","summary":"Demo","start":{"dateTime":"2024-06-15T10:00:00Z"},"end":{"dateTime":"2024-06-15T11:00:00Z"}},
			{"id":"allday","summary":"Holiday","start":{"date":"2024-06-16"},"end":{"date":"2024-06-17"}},
			{"id":"broken","summary":"No start"}
		]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/events"):
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.inserted = body
		body["id"] = "new-event"
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodDelete && strings.Contains(path, "/events/"):
		f.deleted = path[strings.LastIndex(path, "/")+1:]
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/tasks"):
		io.WriteString(w, `{"items":[
			{"id":"t1","title":"Undated","status":"needsAction"},
			{"id":"t2","title":"Soon","status":"needsAction","due":"2024-06-20T00:00:00.000Z"},
			{"id":"t3","title":"Done","status":"completed","due":"2024-06-01T00:00:00.000Z"}
		]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/tasks"):
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.inserted = body
		body["id"] = "new-task"
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodPatch && strings.Contains(path, "/tasks/"):
		f.completed = path[strings.LastIndex(path, "/")+1:]
		io.WriteString(w, `{}`)
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := newClient(context.Background(), discardLogger(), config.DefaultConfig().Google, time.UTC,
		option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client, api
}

func TestListSlots_BucketsAndConverts(t *testing.T) {
	client, api := newFakeClient(t)

	buckets, err := client.ListSlots(context.Background(), time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-14T00:00:00Z", api.query["timeMin"])
	assert.Equal(t, "2024-06-16T23:59:59Z", api.query["timeMax"])
	assert.Equal(t, []string{"2024-06-14", "2024-06-15", "2024-06-16"}, buckets.Dates())

	assert.Empty(t, buckets[0].Events)
	require.Len(t, buckets[1].Events, 1)
	assert.Equal(t, "Demo", buckets[1].Events[0].Title)
	assert.False(t, buckets[1].Events[0].AllDay)

	require.Len(t, buckets[2].Events, 1)
	holiday := buckets[2].Events[0]
	assert.True(t, holiday.AllDay)
	assert.Equal(t, "2024-06-16", holiday.Date())
	assert.Equal(t, holiday.Start, holiday.End)
}

func TestCreateEvent_AllDayUsesExclusiveEndDate(t *testing.T) {
	client, api := newFakeClient(t)

	event, err := client.CreateEvent(context.Background(), "Holiday", "2024-06-16", "2024-06-16", "")
	require.NoError(t, err)

	start := api.inserted["start"].(map[string]any)
	end := api.inserted["end"].(map[string]any)
	assert.Equal(t, "2024-06-16", start["date"])
	assert.Equal(t, "2024-06-17", end["date"])
	assert.True(t, event.AllDay)
	assert.Equal(t, "new-event", event.ID)
}

func TestCreateEvent_Timed(t *testing.T) {
	client, api := newFakeClient(t)

	event, err := client.CreateEvent(context.Background(), "Demo", "2024-01-01T10:00:00", "2024-01-01T11:00:00", "notes")
	require.NoError(t, err)

	start := api.inserted["start"].(map[string]any)
	assert.Equal(t, "2024-01-01T10:00:00Z", start["dateTime"])
	assert.Equal(t, "notes", api.inserted["description"])
	assert.Equal(t, 10, event.Start.Hour())
}

func TestCreateEvent_InvalidInput(t *testing.T) {
	client, _ := newFakeClient(t)
	_, err := client.CreateEvent(context.Background(), "x", "tomorrow", "2024-01-01", "")
	assert.Error(t, err)
}

func TestDeleteEvent(t *testing.T) {
	client, api := newFakeClient(t)
	require.NoError(t, client.DeleteEvent(context.Background(), "abc"))
	assert.Equal(t, "abc", api.deleted)
}

func TestListTasks_FiltersAndSorts(t *testing.T) {
	client, _ := newFakeClient(t)

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Soon", tasks[0].Title)
	assert.Equal(t, "2024-06-20", tasks[0].DueKey())
	assert.Equal(t, "Undated", tasks[1].Title)
	assert.Nil(t, tasks[1].Due)
}

func TestCreateAndCompleteTask(t *testing.T) {
	client, api := newFakeClient(t)
	due := time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)

	task, err := client.CreateTask(context.Background(), "Pay rent", "", &due)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-20T00:00:00.000Z", api.inserted["due"])
	assert.Equal(t, "new-task", task.ID)

	require.NoError(t, client.CompleteTask(context.Background(), "t1"))
	assert.Equal(t, "t1", api.completed)
}

func TestGetOAuthConfig_PrefersClientID(t *testing.T) {
	cfg := config.DefaultConfig().Google
	cfg.ClientID, cfg.ClientSecret = "id", "secret"

	oc, err := getOAuthConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "id", oc.ClientID)
	assert.Equal(t, Scopes, oc.Scopes)
}

func TestGetOAuthConfig_MissingCredentialsFile(t *testing.T) {
	cfg := config.DefaultConfig().Google
	cfg.CredentialsFile = filepath.Join(t.TempDir(), "credentials.json")
	_, err := getOAuthConfig(cfg)
	assert.ErrorContains(t, err, "not found")
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSource_WritesOnlyChangedTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	initial := &oauth2.Token{AccessToken: "old"}

	src := newSavingTokenSource(staticSource{tok: initial}, path, initial, discardLogger())
	_, err := src.Token()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	src.base = staticSource{tok: &oauth2.Token{AccessToken: "new"}}
	_, err = src.Token()
	require.NoError(t, err)

	saved, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
}
