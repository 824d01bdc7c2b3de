package completion

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"

	"mom-assistant/internal/config"
)

// newRecorder replays a cassette from testdata/fixtures. Only method and URL
// are matched so prompt tweaks do not invalidate recordings.
func newRecorder(t *testing.T, name string) *recorder.Recorder {
	t.Helper()

	r, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", name), recorder.ModeReplaying, nil)
	require.NoError(t, err)

	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && r.URL.String() == i.URL
	})
	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("stop recorder: %v", err)
		}
	})
	return r
}

func TestCompleteReplaysRecordedTranslation(t *testing.T) {
	rec := newRecorder(t, "translate_dress")

	client, err := New(config.ProviderConfig{
		APIKey:  "sk-recorded",
		BaseURL: "https://api.openai.com/v1",
	}, &http.Client{Transport: rec})
	require.NoError(t, err)

	res, err := client.Complete(context.Background(), translateRequest())
	require.NoError(t, err)
	assert.Equal(t, "你能在星期五之前把裙子做好吗？", res.Text)
	assert.Equal(t, "chatcmpl-recorded", res.ID)
}
