package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/hugh/recipe-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyPattern = regexp.MustCompile(`^uploads/recipe/[0-9a-f-]{36}\.[a-z0-9]+$`)

func TestNewImageKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		detected string
		wantExt  string
	}{
		{"keeps_matching_extension", "myimage.png", ".png", ".png"},
		{"keeps_jpeg_spelling", "Photo.JPEG", ".jpg", ".jpeg"},
		{"content_wins_over_filename", "dish.png", ".jpg", ".jpg"},
		{"gif_named_jpeg", "anim.jpeg", ".gif", ".gif"},
		{"detected_without_extension", "upload", ".gif", ".gif"},
		{"detected_on_odd_extension", "evil.p$p", ".png", ".png"},
		{"detected_on_non_image_extension", "notes.txt", ".png", ".png"},
		{"filename_when_nothing_detected", "a.gif", "", ".gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewImageKey(tt.filename, tt.detected)
			assert.Regexp(t, keyPattern, key)
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
		})
	}

	assert.NotEqual(t, NewImageKey("a.png", ""), NewImageKey("a.png", ""))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("uploads/recipe/x.png"))

	for _, bad := range []string{"", "/etc/passwd", "../x.png", "uploads/../../x", "uploads//x.png", `uploads\x.png`, "./x.png"} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidKey, bad)
	}
}

func TestLocalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := NewImageKey("dish.png", "")
	require.NoError(t, store.Put(ctx, key, strings.NewReader("payload"), "image/png"))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(body))

	_, err = os.Stat(filepath.Join(filepath.Dir(store.Path(key)), filepath.Base(store.Path(key))))
	assert.NoError(t, err)
	assert.Equal(t, "/media/"+key, store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.png", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLocalStore_FailedPutLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := NewImageKey("dish.png", "")
	require.Error(t, store.Put(ctx, key, failingReader{}, "image/png"))

	objects, err := store.List(ctx, RecipeImagePrefix)
	require.NoError(t, err)
	assert.Empty(t, objects)

	entries, err := os.ReadDir(filepath.Dir(store.Path(key)))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	objects, err := store.List(ctx, RecipeImagePrefix)
	require.NoError(t, err)
	assert.Empty(t, objects, "missing prefix directory lists as empty")

	k1 := NewImageKey("a.png", "")
	k2 := NewImageKey("b.jpg", "")
	require.NoError(t, store.Put(ctx, k1, strings.NewReader("1"), ""))
	require.NoError(t, store.Put(ctx, k2, strings.NewReader("2"), ""))
	require.NoError(t, store.Put(ctx, "uploads/other/c.png", strings.NewReader("3"), ""))

	// a leftover temp file must not be reported
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(store.Path(k1)), incomingPrefix+"x.png"), []byte("tmp"), 0o644))

	objects, err = store.List(ctx, RecipeImagePrefix)
	require.NoError(t, err)

	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
		assert.WithinDuration(t, time.Now(), o.ModTime, time.Minute)
	}
	assert.ElementsMatch(t, []string{k1, k2}, keys)
}

func TestNewImageStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewImageStore(ctx, &config.StorageConfig{Backend: "local", MediaRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewImageStore(ctx, &config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)

	_, err = NewImageStore(ctx, &config.StorageConfig{Backend: "s3"})
	assert.Error(t, err, "s3 needs a bucket")

	_, err = NewImageStore(ctx, &config.StorageConfig{Backend: "gcs"})
	assert.Error(t, err, "gcs needs a bucket")
}

func TestS3Store_URL(t *testing.T) {
	s := &S3Store{bucket: "recipes", region: "eu-west-1"}
	assert.Equal(t, "https://recipes.s3.eu-west-1.amazonaws.com/uploads/recipe/a.png", s.URL("uploads/recipe/a.png"))

	s.endpoint = "http://127.0.0.1:9000/"
	assert.Equal(t, "http://127.0.0.1:9000/recipes/uploads/recipe/a.png", s.URL("uploads/recipe/a.png"))
}
