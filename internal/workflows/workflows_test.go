package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/configs"
	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/secrets"
	"github.com/securevault/securevault/internal/vault"
)

type testEnv struct {
	dir       string
	storePath string
	keyPath   string
	srcDir    string
}

// setupVault points the user settings at a temporary directory and returns
// its layout.
func setupVault(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(configs.StoreEnvVar, "")

	original := configs.UserVaultSettings
	configs.UserVaultSettings = &configs.UserSettings{
		DataPath:   filepath.Join(dir, "data"),
		ConfigPath: filepath.Join(dir, "config"),
		Username:   "tester",
	}
	t.Cleanup(func() {
		configs.UserVaultSettings = original
	})

	env := testEnv{
		dir:       dir,
		storePath: filepath.Join(dir, "data", "store"),
		keyPath:   filepath.Join(dir, "data", "store", configs.KeyFileName),
		srcDir:    filepath.Join(dir, "src"),
	}
	require.NoError(t, os.MkdirAll(env.srcDir, 0700))
	return env
}

func (e testEnv) writeSource(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.srcDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func auditOps(t *testing.T, storePath string) []string {
	t.Helper()
	entries, err := audit.ReadEntries(storePath)
	require.NoError(t, err)
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
	}
	return ops
}

func TestOpenSessionCreatesKeyForEmptyVault(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()

	session, err := OpenSession(ctx, SessionOptions{})
	require.NoError(t, err)
	assert.True(t, session.KeyCreated)
	assert.False(t, session.Ephemeral)
	assert.Equal(t, env.storePath, session.StorePath)
	assert.True(t, secrets.KeyFileExists(env.keyPath))

	again, err := OpenSession(ctx, SessionOptions{})
	require.NoError(t, err)
	assert.False(t, again.KeyCreated)
}

func TestOpenSessionRefusesMissingKeyForNonEmptyVault(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "a.txt", "hello vault")

	_, err := Upload(ctx, UploadOptions{Patterns: []string{src}})
	require.NoError(t, err)
	require.NoError(t, os.Remove(env.keyPath))

	_, err = OpenSession(ctx, SessionOptions{})
	assert.ErrorIs(t, err, verrors.ErrKeyNotFound)
}

func TestStoresKeepSeparateKeys(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "a.txt", "hello vault")
	otherStore := filepath.Join(env.dir, "other")

	up, err := Upload(ctx, UploadOptions{Patterns: []string{src}})
	require.NoError(t, err)
	require.Len(t, up.Uploaded, 1)
	require.NoError(t, os.Remove(env.keyPath))

	// Opening an empty second store creates its own key and leaves the
	// first store's missing key alone.
	_, err = Upload(ctx, UploadOptions{Patterns: []string{src}, StorePath: otherStore})
	require.NoError(t, err)
	assert.True(t, secrets.KeyFileExists(filepath.Join(otherStore, configs.KeyFileName)))
	assert.False(t, secrets.KeyFileExists(env.keyPath))

	_, err = Download(ctx, DownloadOptions{ID: up.Uploaded[0].ID, OutputPath: "-"})
	assert.ErrorIs(t, err, verrors.ErrKeyNotFound)
}

func TestOpenSessionEphemeralKey(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()

	config := configs.DefaultConfig()
	config.Vault.PersistKey = false
	require.NoError(t, configs.SaveConfig(config))

	src := env.writeSource(t, "a.txt", "hello vault")
	up, err := Upload(ctx, UploadOptions{Patterns: []string{src}})
	require.NoError(t, err)
	require.Len(t, up.Uploaded, 1)
	assert.False(t, secrets.KeyFileExists(env.keyPath))

	// A new process run gets a new key, so earlier files no longer decrypt.
	_, err = Download(ctx, DownloadOptions{ID: up.Uploaded[0].ID, OutputPath: "-"})
	assert.ErrorIs(t, err, verrors.ErrAuthentication)
}

func TestUploadAndDownload(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "hello.txt", "hello vault")

	up, err := Upload(ctx, UploadOptions{Patterns: []string{src}})
	require.NoError(t, err)
	require.Len(t, up.Uploaded, 1)
	assert.Empty(t, up.Failed)
	assert.Equal(t, "/", up.Folder)

	item := up.Uploaded[0]
	assert.Equal(t, "hello.txt", item.Name)
	assert.Equal(t, vault.FileTypeDocument, item.Type)
	assert.Equal(t, int64(len("hello vault")), item.Size)

	blob, err := os.ReadFile(filepath.Join(env.storePath, "blobs", item.ID+".vault"))
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "hello vault")

	out := filepath.Join(env.dir, "out.txt")
	down, err := Download(ctx, DownloadOptions{ID: item.ID[:8], OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, out, down.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello vault", string(data))

	_, err = Download(ctx, DownloadOptions{ID: item.ID, OutputPath: out})
	assert.ErrorIs(t, err, verrors.ErrOutputExists)

	_, err = Download(ctx, DownloadOptions{ID: item.ID, OutputPath: out, Force: true})
	assert.NoError(t, err)

	stdout, err := Download(ctx, DownloadOptions{ID: item.ID, OutputPath: "-"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello vault"), stdout.Data)
	assert.Empty(t, stdout.OutputPath)

	assert.Equal(t, []string{"keygen", "upload", "download", "download", "download"}, auditOps(t, env.storePath))
}

func TestDownloadDetectsTampering(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "a.txt", "payload")

	up, err := Upload(ctx, UploadOptions{Patterns: []string{src}})
	require.NoError(t, err)
	blobPath := filepath.Join(env.storePath, "blobs", up.Uploaded[0].ID+".vault")

	blob, err := os.ReadFile(blobPath)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0x01
	require.NoError(t, os.WriteFile(blobPath, blob, 0600))

	_, err = Download(ctx, DownloadOptions{ID: up.Uploaded[0].ID, OutputPath: "-"})
	assert.ErrorIs(t, err, verrors.ErrAuthentication)

	require.NoError(t, os.WriteFile(blobPath, blob[:3], 0600))
	_, err = Download(ctx, DownloadOptions{ID: up.Uploaded[0].ID, OutputPath: "-"})
	assert.ErrorIs(t, err, verrors.ErrFormat)
}

func TestUploadResolvesDirectoriesAndGlobs(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	env.writeSource(t, "docs/a.txt", "a")
	env.writeSource(t, "docs/nested/b.md", "b")
	env.writeSource(t, "pics/c.png", "c")
	env.writeSource(t, "pics/deep/d.png", "d")

	up, err := Upload(ctx, UploadOptions{Patterns: []string{
		filepath.Join(env.srcDir, "docs"),
		filepath.Join(env.srcDir, "**", "*.png"),
		filepath.Join(env.srcDir, "docs", "a.txt"),
	}})
	require.NoError(t, err)

	var names []string
	for _, item := range up.Uploaded {
		names = append(names, item.Name)
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.md", "c.png", "d.png"}, names)
}

func TestUploadNoMatches(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()

	_, err := Upload(ctx, UploadOptions{Patterns: []string{filepath.Join(env.srcDir, "missing.txt")}})
	assert.ErrorIs(t, err, verrors.ErrNoFilesFound)

	_, err = Upload(ctx, UploadOptions{Patterns: []string{filepath.Join(env.srcDir, "*.none")}})
	assert.ErrorIs(t, err, verrors.ErrNoFilesFound)
}

func TestUploadIntoFolderKeepsCurrentFolder(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "a.txt", "a")

	_, err := Mkdir(ctx, MkdirOptions{Name: "docs"})
	require.NoError(t, err)

	up, err := Upload(ctx, UploadOptions{Patterns: []string{src}, Folder: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "/docs", up.Folder)
	assert.Equal(t, "/docs", up.Uploaded[0].Path)

	root, err := List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/", root.Path)
	assert.Empty(t, root.Files)

	_, err = Upload(ctx, UploadOptions{Patterns: []string{src}, Folder: "/missing"})
	assert.ErrorIs(t, err, verrors.ErrFolderNotFound)
}

func TestFolderWorkflows(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	src := env.writeSource(t, "a.txt", "a")

	mk, err := Mkdir(ctx, MkdirOptions{Name: "projects"})
	require.NoError(t, err)
	assert.Equal(t, "/projects", mk.Folder.Path)

	_, err = Mkdir(ctx, MkdirOptions{Name: "projects"})
	assert.ErrorIs(t, err, verrors.ErrFolderExists)

	cd, err := ChangeDir(ctx, ChangeDirOptions{Path: "projects"})
	require.NoError(t, err)
	assert.Equal(t, "/projects", cd.Path)

	_, err = Mkdir(ctx, MkdirOptions{Name: "2024"})
	require.NoError(t, err)
	_, err = Upload(ctx, UploadOptions{Patterns: []string{src}, Folder: "2024"})
	require.NoError(t, err)

	cd, err = ChangeDir(ctx, ChangeDirOptions{Path: "2024"})
	require.NoError(t, err)
	assert.Equal(t, "/projects/2024", cd.Path)

	cd, err = ChangeDir(ctx, ChangeDirOptions{Path: ".."})
	require.NoError(t, err)
	assert.Equal(t, "/projects", cd.Path)

	_, err = ChangeDir(ctx, ChangeDirOptions{Path: "/nope"})
	assert.ErrorIs(t, err, verrors.ErrFolderNotFound)

	cd, err = ChangeDir(ctx, ChangeDirOptions{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, "/", cd.Path)

	del, err := Delete(ctx, DeleteOptions{IDs: []string{mk.Folder.ID[:8]}})
	require.NoError(t, err)
	assert.NoError(t, del.BlobErr)
	assert.Equal(t, []string{"/projects", "/projects/2024"}, del.Folders)
	assert.Equal(t, []string{"a.txt"}, del.Files)

	blobs, err := os.ReadDir(filepath.Join(env.storePath, "blobs"))
	require.NoError(t, err)
	assert.Empty(t, blobs)

	list, err := List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list.Folders)
}

func TestDeleteUnknownID(t *testing.T) {
	setupVault(t)
	_, err := Delete(context.Background(), DeleteOptions{IDs: []string{"ffffffff"}})
	assert.ErrorIs(t, err, verrors.ErrItemNotFound)
}

func TestListSortAndSearch(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	srcs := []string{
		env.writeSource(t, "b.txt", "bb"),
		env.writeSource(t, "a.png", "aaa"),
		env.writeSource(t, "c.go", "c"),
	}
	_, err := Upload(ctx, UploadOptions{Patterns: srcs})
	require.NoError(t, err)

	names := func(r *ListResult) []string {
		var out []string
		for _, f := range r.Files {
			out = append(out, f.Name)
		}
		return out
	}

	byName, err := List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.txt", "c.go"}, names(byName))
	assert.Equal(t, "grid", byName.View.Type)

	bySize, err := List(ctx, ListOptions{Sort: "size", Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.txt", "c.go"}, names(bySize))

	search, err := List(ctx, ListOptions{Search: "code"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.go"}, names(search))

	_, err = List(ctx, ListOptions{Sort: "colour"})
	assert.ErrorIs(t, err, verrors.ErrInvalidConfig)
}

func TestPreviewAndFavorite(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	srcs := []string{
		env.writeSource(t, "photo.jpg", "jpeg bytes"),
		env.writeSource(t, "notes.txt", "text"),
	}
	up, err := Upload(ctx, UploadOptions{Patterns: srcs})
	require.NoError(t, err)
	require.Len(t, up.Uploaded, 2)
	photo, notes := up.Uploaded[0], up.Uploaded[1]

	preview, err := Preview(ctx, PreviewOptions{ID: photo.ID, Dir: env.dir})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", preview.MIME)
	assert.Equal(t, ".jpg", filepath.Ext(preview.Path))
	data, err := os.ReadFile(preview.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	_, err = Preview(ctx, PreviewOptions{ID: notes.ID, Dir: env.dir})
	assert.ErrorIs(t, err, verrors.ErrNotPreviewable)

	fav, err := Favorite(ctx, FavoriteOptions{ID: notes.ID})
	require.NoError(t, err)
	assert.True(t, fav.Favorited)

	list, err := List(ctx, ListOptions{})
	require.NoError(t, err)
	for _, f := range list.Files {
		assert.Equal(t, f.ID == notes.ID, f.Favorited, f.Name)
	}

	fav, err = Favorite(ctx, FavoriteOptions{ID: notes.ID})
	require.NoError(t, err)
	assert.False(t, fav.Favorited)
}

func TestKeyWorkflows(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()

	gen, err := KeyGenerate(ctx, KeyGenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, env.keyPath, gen.KeyPath)
	assert.False(t, gen.Replaced)

	_, err = KeyGenerate(ctx, KeyGenerateOptions{})
	assert.ErrorIs(t, err, verrors.ErrKeyExists)

	raw, err := KeyExport(ctx, KeyExportOptions{})
	require.NoError(t, err)
	assert.False(t, raw.Wrapped)

	wrapped, err := KeyExport(ctx, KeyExportOptions{Password: "correct horse", OutputPath: filepath.Join(env.dir, "key.txt")})
	require.NoError(t, err)
	assert.True(t, wrapped.Wrapped)
	assert.True(t, secrets.IsWrappedKey(wrapped.Key))
	assert.FileExists(t, wrapped.OutputPath)

	imported, err := KeyImport(ctx, KeyImportOptions{Data: raw.Key})
	require.NoError(t, err, "importing the key already in use is a no-op")
	assert.False(t, imported.Replaced)

	_, err = KeyImport(ctx, KeyImportOptions{Data: wrapped.Key})
	assert.ErrorIs(t, err, verrors.ErrInvalidPassword)

	_, err = KeyImport(ctx, KeyImportOptions{Data: wrapped.Key, Password: "wrong"})
	assert.ErrorIs(t, err, verrors.ErrAuthentication)

	_, err = KeyImport(ctx, KeyImportOptions{Data: "not a key"})
	assert.ErrorIs(t, err, verrors.ErrDecoding)

	_, err = KeyGenerate(ctx, KeyGenerateOptions{Force: true})
	require.NoError(t, err)

	_, err = KeyImport(ctx, KeyImportOptions{Data: wrapped.Key, Password: "correct horse"})
	assert.ErrorIs(t, err, verrors.ErrKeyExists)

	restored, err := KeyImport(ctx, KeyImportOptions{Data: wrapped.Key, Password: "correct horse", Force: true})
	require.NoError(t, err)
	assert.True(t, restored.Wrapped)
	assert.True(t, restored.Replaced)

	key, err := secrets.LoadKeyFile(env.keyPath)
	require.NoError(t, err)
	assert.Equal(t, raw.Key, secrets.ExportKey(key))
}

func TestKeyWorkflowsUseStoreOverride(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()
	otherStore := filepath.Join(env.dir, "other")

	gen, err := KeyGenerate(ctx, KeyGenerateOptions{StorePath: otherStore})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(otherStore, configs.KeyFileName), gen.KeyPath)
	assert.False(t, secrets.KeyFileExists(env.keyPath))

	exported, err := KeyExport(ctx, KeyExportOptions{StorePath: otherStore})
	require.NoError(t, err)

	_, err = KeyImport(ctx, KeyImportOptions{Data: exported.Key})
	require.NoError(t, err)

	assert.Equal(t, []string{"keygen", "key-export"}, auditOps(t, otherStore))
	assert.Equal(t, []string{"key-import"}, auditOps(t, env.storePath))
}

func TestKeyExportWithoutKey(t *testing.T) {
	setupVault(t)
	_, err := KeyExport(context.Background(), KeyExportOptions{})
	assert.ErrorIs(t, err, verrors.ErrKeyNotFound)
}

func TestLogWorkflow(t *testing.T) {
	env := setupVault(t)
	ctx := context.Background()

	audit.Log(env.storePath, audit.Entry{Timestamp: "2024-01-10T09:00:00.000000Z", User: "alice", Operation: "upload", Files: []string{"a.txt"}})
	audit.Log(env.storePath, audit.Entry{Timestamp: "2024-01-15T09:00:00.000000Z", User: "bob", Operation: "download", Files: []string{"a.txt"}})
	audit.Log(env.storePath, audit.Entry{Timestamp: "2024-01-20T09:00:00.000000Z", User: "alice", Operation: "delete", Files: []string{"a.txt"}})

	tests := []struct {
		name string
		opts LogOptions
		want []string
	}{
		{"all", LogOptions{}, []string{"upload", "download", "delete"}},
		{"user", LogOptions{User: "ALICE"}, []string{"upload", "delete"}},
		{"operations", LogOptions{Operations: "upload, delete"}, []string{"upload", "delete"}},
		{"since", LogOptions{Since: "2024-01-15"}, []string{"download", "delete"}},
		{"until includes the whole day", LogOptions{Until: "2024-01-15"}, []string{"upload", "download"}},
		{"limit keeps most recent", LogOptions{Limit: 2}, []string{"download", "delete"}},
		{"reverse with limit", LogOptions{Reverse: true, Limit: 2}, []string{"delete", "download"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Log(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 3, result.TotalEntriesBeforeFilter)
			var ops []string
			for _, e := range result.Entries {
				ops = append(ops, e.Operation)
			}
			assert.Equal(t, tt.want, ops)
		})
	}

	_, err := Log(ctx, LogOptions{Since: "15/01/2024"})
	assert.ErrorIs(t, err, verrors.ErrInvalidDateFormat)
}

func TestFormatDetails(t *testing.T) {
	tests := []struct {
		entry audit.Entry
		want  string
	}{
		{audit.Entry{Operation: "upload", Files: []string{"a.txt"}, Folder: "/docs"}, "a.txt -> /docs"},
		{audit.Entry{Operation: "upload", Files: []string{"a", "b", "c", "d"}, Folder: "/", FailedCount: 1}, "4 files -> / (1 failed)"},
		{audit.Entry{Operation: "download", Files: []string{"a.txt"}, OutputPath: "/tmp/a.txt"}, "a.txt -> /tmp/a.txt"},
		{audit.Entry{Operation: "delete", Folders: []string{"/x"}, Files: []string{"a.txt"}}, "/x, a.txt"},
		{audit.Entry{Operation: "mkdir", Folders: []string{"/docs"}}, "/docs"},
		{audit.Entry{Operation: "key-import", Wrapped: true}, "password protected"},
		{audit.Entry{Operation: "unknown"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.entry.Operation, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDetails(tt.entry))
		})
	}
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "2024-01-15 10:30:00", FormatDateTime("2024-01-15T10:30:00.123456Z"))
	assert.Equal(t, "garbage", FormatDateTime("garbage"))
}

func TestResolveVaultPath(t *testing.T) {
	assert.Equal(t, "/a/b", resolveVaultPath("/a", "b"))
	assert.Equal(t, "/c", resolveVaultPath("/a", "/c"))
	assert.Equal(t, "/", resolveVaultPath("/a", ".."))
	assert.Equal(t, "/a", resolveVaultPath("/a", ""))
}
