package tasks_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_go/effects/runner"
	"github.com/on-the-ground/effect_ive_go/effects/tasks"
	"github.com/rickb777/date/v2/timespan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestHTTPGet_IndentsJSON(t *testing.T) {
	url := serve(t, http.StatusOK, `{"data":{"image_url":"x.gif"}}`)

	body, err := tasks.HTTPGet(nil, url)(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"data\": {\n\t\t\"image_url\": \"x.gif\"\n\t}\n}", body)
}

func TestHTTPGet_PlainBody(t *testing.T) {
	url := serve(t, http.StatusOK, "hello")

	body, err := tasks.HTTPGet(nil, url)(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "hello", body)
}

func TestHTTPGet_BadStatus(t *testing.T) {
	url := serve(t, http.StatusTeapot, "nope")

	_, err := tasks.HTTPGet(nil, url)(context.Background())

	assert.ErrorIs(t, err, tasks.ErrBadResponse)
}

func TestHTTPGet_CancelledContext(t *testing.T) {
	url := serve(t, http.StatusOK, "hello")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tasks.HTTPGet(nil, url)(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

type gif struct {
	Data struct {
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

func imageURL(g gif) (string, error) {
	if g.Data.ImageURL == "" {
		return "", errors.New("no image url")
	}
	return g.Data.ImageURL, nil
}

func TestDecode(t *testing.T) {
	ok := serve(t, http.StatusOK, `{"data":{"image_url":"x.gif"}}`)
	empty := serve(t, http.StatusOK, `{"data":{}}`)
	broken := serve(t, http.StatusOK, `{"data":`)

	ctx := context.Background()
	got, err := tasks.Decode(tasks.HTTPGet(nil, ok), imageURL)(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x.gif", got)

	_, err = tasks.Decode(tasks.HTTPGet(nil, empty), imageURL)(ctx)
	assert.EqualError(t, err, "no image url")

	_, err = tasks.Decode(tasks.HTTPGet(nil, broken), imageURL)(ctx)
	assert.Error(t, err)
}

func TestRunDelay(t *testing.T) {
	run := tasks.RunDelay[time.Duration]()
	d := tasks.Delay[time.Duration]{
		After: 10 * time.Millisecond,
		Then:  func(waited timespan.TimeSpan) time.Duration { return waited.Duration() },
	}

	var got []time.Duration
	for m := range run(context.Background(), d) {
		got = append(got, m)
	}

	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0], 10*time.Millisecond)
}

func TestRunDelay_CancelledYieldsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := tasks.RunDelay[string]()
	d := tasks.Delay[string]{After: time.Hour, Then: func(timespan.TimeSpan) string { return "late" }}

	_, open := <-run(ctx, d)
	assert.False(t, open)
}

func TestRunDelay_PanickingThenIsReported(t *testing.T) {
	recovered := make(chan any, 1)
	ctx := runner.WithPanicHandler(context.Background(), func(_ any, r any) { recovered <- r })

	run := tasks.RunDelay[string]()
	d := tasks.Delay[string]{After: time.Millisecond, Then: func(timespan.TimeSpan) string { panic("no clock") }}

	_, open := <-run(ctx, d)
	assert.False(t, open)
	assert.Equal(t, "no clock", <-recovered)
}
