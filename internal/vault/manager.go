package vault

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/secrets"
)

const (
	rootPath = "/"
	rootID   = "root"
	rootName = "Root"
)

// Manager is the file manager of one vault session. It borrows the session
// key and never modifies it.
type Manager struct {
	mu          sync.RWMutex
	key         *secrets.SymmetricKey
	store       BlobStore
	folders     map[string]*Folder
	currentPath string
	search      string
	sort        SortConfig
	view        ViewMode
	concurrency int

	now   func() time.Time
	newID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithConcurrency limits how many files Upload encrypts at once.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithSort sets the initial sort order.
func WithSort(config SortConfig) Option {
	return func(m *Manager) { m.sort = config }
}

// WithViewMode sets the initial view mode.
func WithViewMode(view ViewMode) Option {
	return func(m *Manager) { m.view = view }
}

// NewManager returns a Manager holding only the root folder.
func NewManager(key *secrets.SymmetricKey, store BlobStore, opts ...Option) *Manager {
	m := &Manager{
		key:         key,
		store:       store,
		folders:     make(map[string]*Folder),
		currentPath: rootPath,
		sort:        DefaultSort,
		view:        ViewMode{Type: "grid", ShowDetails: true},
		concurrency: 4,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.folders[rootPath] = newRootFolder()
	return m
}

func newRootFolder() *Folder {
	return &Folder{ID: rootID, Name: rootName, Path: rootPath}
}

// CurrentPath returns the path of the current folder.
func (m *Manager) CurrentPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentPath
}

// CurrentFolder returns a copy of the current folder.
func (m *Manager) CurrentFolder() Folder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.folders[m.currentPath].clone()
}

// Folder returns a copy of the folder at p.
func (m *Manager) Folder(p string) (Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	folder, ok := m.folders[cleanPath(p)]
	if !ok {
		return Folder{}, fmt.Errorf("%w: %s", verrors.ErrFolderNotFound, p)
	}
	return folder.clone(), nil
}

func (m *Manager) SetSearchQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.search = query
}

func (m *Manager) SetSort(config SortConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = config
}

func (m *Manager) Sort() SortConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sort
}

func (m *Manager) SetViewMode(view ViewMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = view
}

func (m *Manager) ViewMode() ViewMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// CurrentFiles returns the files of the current folder that match the
// search query, in sort order.
func (m *Manager) CurrentFiles() []FileItem {
	m.mu.RLock()
	folder := m.folders[m.currentPath]
	query := strings.ToLower(m.search)
	config := m.sort

	files := make([]FileItem, 0, len(folder.Files))
	for _, f := range folder.Files {
		if query == "" ||
			strings.Contains(strings.ToLower(f.Name), query) ||
			strings.Contains(strings.ToLower(string(f.Type)), query) {
			files = append(files, f)
		}
	}
	m.mu.RUnlock()

	sortFiles(files, config)
	return files
}

// CurrentSubfolders returns the direct children of the current folder that
// match the search query, ordered by name in the configured direction.
func (m *Manager) CurrentSubfolders() []Folder {
	m.mu.RLock()
	folder := m.folders[m.currentPath]
	query := strings.ToLower(m.search)
	direction := m.sort.Direction

	subfolders := make([]Folder, 0, len(folder.Subfolders))
	for _, childPath := range folder.Subfolders {
		child, ok := m.folders[childPath]
		if !ok {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(child.Name), query) {
			subfolders = append(subfolders, child.clone())
		}
	}
	m.mu.RUnlock()

	collator := collate.New(language.Und)
	slices.SortStableFunc(subfolders, func(a, b Folder) int {
		c := collator.CompareString(a.Name, b.Name)
		if direction == SortDesc {
			return -c
		}
		return c
	})
	return subfolders
}

func sortFiles(files []FileItem, config SortConfig) {
	collator := collate.New(language.Und)

	slices.SortStableFunc(files, func(a, b FileItem) int {
		var c int
		switch config.Type {
		case SortBySize:
			c = cmp.Compare(a.Size, b.Size)
		case SortByDate:
			c = a.LastModified.Compare(b.LastModified)
		case SortByType:
			c = strings.Compare(string(a.Type), string(b.Type))
		default:
			c = collator.CompareString(a.Name, b.Name)
		}
		if config.Direction == SortDesc {
			return -c
		}
		return c
	})
}

// CreateFolder adds a child folder to the current folder.
func (m *Manager) CreateFolder(name string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
		return Folder{}, fmt.Errorf("%w: %q", verrors.ErrInvalidName, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.folders[m.currentPath]
	for _, childPath := range parent.Subfolders {
		if child, ok := m.folders[childPath]; ok && child.Name == name {
			return Folder{}, fmt.Errorf("%w: %q in %s", verrors.ErrFolderExists, name, parent.Path)
		}
	}

	folder := &Folder{
		ID:     m.newID(),
		Name:   name,
		Path:   path.Join(parent.Path, name),
		Parent: parent.ID,
	}
	m.folders[folder.Path] = folder
	parent.Subfolders = append(parent.Subfolders, folder.Path)

	return folder.clone(), nil
}

// Navigate makes the folder at p current.
func (m *Manager) Navigate(p string) error {
	p = cleanPath(p)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.folders[p]; !ok {
		return fmt.Errorf("%w: %s", verrors.ErrFolderNotFound, p)
	}
	m.currentPath = p
	return nil
}

// NavigateToParent moves one level up. It is a no-op at the root.
func (m *Manager) NavigateToParent() error {
	m.mu.RLock()
	current := m.currentPath
	m.mu.RUnlock()

	if current == rootPath {
		return nil
	}
	return m.Navigate(path.Dir(current))
}

// UploadInput is one file of an upload batch. Load is called from a worker
// goroutine.
type UploadInput struct {
	Name         string
	LastModified time.Time
	Load         func() ([]byte, error)
}

// BytesInput wraps in-memory content as an UploadInput.
func BytesInput(name string, data []byte, lastModified time.Time) UploadInput {
	return UploadInput{
		Name:         name,
		LastModified: lastModified,
		Load:         func() ([]byte, error) { return data, nil },
	}
}

// UploadResult reports the outcome for the input at the same index.
type UploadResult struct {
	Name string
	Item *FileItem
	Err  error
}

// Upload encrypts and stores every input into the current folder. Inputs
// are processed concurrently; a failed input is reported in its own result
// and does not affect the others.
func (m *Manager) Upload(ctx context.Context, inputs []UploadInput) []UploadResult {
	results := make([]UploadResult, len(inputs))
	target := m.CurrentPath()

	var g errgroup.Group
	g.SetLimit(m.concurrency)

	for i, input := range inputs {
		results[i].Name = input.Name
		g.Go(func() error {
			item, err := m.uploadOne(ctx, target, input)
			results[i].Item = item
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (m *Manager) uploadOne(ctx context.Context, target string, input UploadInput) (*FileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Load == nil {
		return nil, fmt.Errorf("%s: no content", input.Name)
	}

	data, err := input.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input.Name, err)
	}

	ciphertext, iv, err := secrets.Encrypt(data, m.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input.Name, err)
	}
	packed := secrets.Pack(ciphertext, iv)

	ext := Extension(input.Name)
	lastModified := input.LastModified
	if lastModified.IsZero() {
		lastModified = m.now()
	}

	item := FileItem{
		ID:           m.newID(),
		Name:         input.Name,
		Size:         int64(len(data)),
		Type:         FileTypeFromExtension(ext),
		LastModified: lastModified,
		Encrypted:    true,
		Path:         target,
		Extension:    ext,
		StoredSize:   int64(len(packed)),
	}

	if err := m.store.Put(ctx, item.ID, packed); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", input.Name, err)
	}

	m.mu.Lock()
	folder, ok := m.folders[target]
	if ok {
		folder.Files = append(folder.Files, item)
	}
	m.mu.Unlock()

	if !ok {
		// The folder was deleted while this file was being encrypted.
		_ = m.store.Delete(context.WithoutCancel(ctx), item.ID)
		return nil, fmt.Errorf("%w: %s", verrors.ErrFolderNotFound, target)
	}

	return &item, nil
}

// File returns the metadata of the file with the given id.
func (m *Manager) File(id string) (FileItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if item, ok := m.findFile(id); ok {
		return *item, nil
	}
	return FileItem{}, fmt.Errorf("%w: %s", verrors.ErrFileNotFound, id)
}

func (m *Manager) findFile(id string) (*FileItem, bool) {
	for _, folder := range m.folders {
		for i := range folder.Files {
			if folder.Files[i].ID == id {
				return &folder.Files[i], true
			}
		}
	}
	return nil, false
}

// Download returns the decrypted content of a file.
func (m *Manager) Download(ctx context.Context, id string) (FileItem, []byte, error) {
	item, err := m.File(id)
	if err != nil {
		return FileItem{}, nil, err
	}

	packed, err := m.store.Get(ctx, item.ID)
	if err != nil {
		return item, nil, fmt.Errorf("%s: %w", item.Name, err)
	}

	ciphertext, iv, err := secrets.Unpack(packed)
	if err != nil {
		return item, nil, fmt.Errorf("%s: %w", item.Name, err)
	}

	plaintext, err := secrets.Decrypt(ciphertext, m.key, iv)
	if err != nil {
		return item, nil, fmt.Errorf("%s: %w", item.Name, err)
	}

	return item, plaintext, nil
}

// Preview decrypts a previewable file and returns its MIME type.
func (m *Manager) Preview(ctx context.Context, id string) (FileItem, string, []byte, error) {
	item, err := m.File(id)
	if err != nil {
		return FileItem{}, "", nil, err
	}

	mime, ok := PreviewMIME(item)
	if !ok {
		return item, "", nil, fmt.Errorf("%w: %s is %s", verrors.ErrNotPreviewable, item.Name, item.Type)
	}

	_, data, err := m.Download(ctx, id)
	if err != nil {
		return item, "", nil, err
	}
	return item, mime, data, nil
}

// ToggleFavorite flips the favorite flag of a file and returns the new value.
func (m *Manager) ToggleFavorite(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.findFile(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", verrors.ErrFileNotFound, id)
	}
	item.Favorited = !item.Favorited
	return item.Favorited, nil
}

// DeleteResult lists what Delete removed.
type DeleteResult struct {
	Files   []FileItem
	Folders []string
}

// Delete removes files of the current folder and folders anywhere in the
// tree, including all of their descendants. Nothing is removed when an id
// is unknown or names the root.
func (m *Manager) Delete(ctx context.Context, ids []string) (DeleteResult, error) {
	var result DeleteResult
	if len(ids) == 0 {
		return result, nil
	}

	m.mu.Lock()
	current := m.folders[m.currentPath]

	fileIDs := make(map[string]bool)
	var folderPaths []string
	for _, id := range ids {
		if id == rootID {
			m.mu.Unlock()
			return DeleteResult{}, verrors.ErrRootFolder
		}
		if slices.ContainsFunc(current.Files, func(f FileItem) bool { return f.ID == id }) {
			fileIDs[id] = true
			continue
		}
		if folder := m.folderByID(id); folder != nil {
			if folder.Path == rootPath {
				m.mu.Unlock()
				return DeleteResult{}, verrors.ErrRootFolder
			}
			folderPaths = append(folderPaths, folder.Path)
			continue
		}
		m.mu.Unlock()
		return DeleteResult{}, fmt.Errorf("%w: %s", verrors.ErrItemNotFound, id)
	}

	kept := current.Files[:0]
	for _, f := range current.Files {
		if fileIDs[f.ID] {
			result.Files = append(result.Files, f)
		} else {
			kept = append(kept, f)
		}
	}
	current.Files = kept

	for _, folderPath := range folderPaths {
		folder, ok := m.folders[folderPath]
		if !ok {
			// Already removed as a descendant of another folder in this call.
			continue
		}
		if parent := m.folderByID(folder.Parent); parent != nil {
			parent.Subfolders = slices.DeleteFunc(parent.Subfolders, func(p string) bool { return p == folderPath })
		}
		for p, f := range m.folders {
			if isWithin(p, folderPath) {
				result.Files = append(result.Files, f.Files...)
				result.Folders = append(result.Folders, p)
				delete(m.folders, p)
			}
		}
	}

	if _, ok := m.folders[m.currentPath]; !ok {
		m.currentPath = rootPath
	}
	m.mu.Unlock()

	slices.Sort(result.Folders)

	var errs []error
	for _, f := range result.Files {
		if err := m.store.Delete(ctx, f.ID); err != nil {
			errs = append(errs, err)
		}
	}

	return result, errors.Join(errs...)
}

func (m *Manager) folderByID(id string) *Folder {
	if id == "" {
		return nil
	}
	for _, folder := range m.folders {
		if folder.ID == id {
			return folder
		}
	}
	return nil
}

// ResolveID expands a full id or a unique id prefix to the id of a file or
// folder.
func (m *Manager) ResolveID(prefix string) (string, ItemKind, error) {
	if prefix == "" {
		return "", 0, fmt.Errorf("%w: empty id", verrors.ErrItemNotFound)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type match struct {
		id   string
		kind ItemKind
	}
	var matches []match
	for _, folder := range m.folders {
		if folder.ID == prefix {
			return folder.ID, KindFolder, nil
		}
		if folder.ID != rootID && strings.HasPrefix(folder.ID, prefix) {
			matches = append(matches, match{folder.ID, KindFolder})
		}
		for _, f := range folder.Files {
			if f.ID == prefix {
				return f.ID, KindFile, nil
			}
			if strings.HasPrefix(f.ID, prefix) {
				matches = append(matches, match{f.ID, KindFile})
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", 0, fmt.Errorf("%w: %s", verrors.ErrItemNotFound, prefix)
	case 1:
		return matches[0].id, matches[0].kind, nil
	default:
		return "", 0, fmt.Errorf("%w: %s", verrors.ErrAmbiguousID, prefix)
	}
}

// Snapshot returns the persisted form of the folder tree.
func (m *Manager) Snapshot() Manifest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	manifest := Manifest{
		Version:     manifestVersion,
		CurrentPath: m.currentPath,
		Folders:     make([]Folder, 0, len(m.folders)),
	}
	for _, folder := range m.folders {
		manifest.Folders = append(manifest.Folders, folder.clone())
	}
	slices.SortFunc(manifest.Folders, func(a, b Folder) int { return strings.Compare(a.Path, b.Path) })

	return manifest
}

// Restore replaces the folder tree with the one in manifest. A manifest
// without a root folder gets a fresh one.
func (m *Manager) Restore(manifest Manifest) error {
	folders := make(map[string]*Folder, len(manifest.Folders)+1)
	for _, folder := range manifest.Folders {
		p := cleanPath(folder.Path)
		if _, dup := folders[p]; dup {
			return fmt.Errorf("manifest lists folder %s twice", p)
		}
		f := folder.clone()
		f.Path = p
		folders[p] = &f
	}
	if _, ok := folders[rootPath]; !ok {
		folders[rootPath] = newRootFolder()
	}

	current := cleanPath(manifest.CurrentPath)
	if _, ok := folders[current]; !ok {
		current = rootPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders = folders
	m.currentPath = current

	return nil
}

// cleanPath normalises p to an absolute slash path.
func cleanPath(p string) string {
	if p == "" {
		return rootPath
	}
	return path.Clean("/" + p)
}

// isWithin reports whether p is dir or lies below it.
func isWithin(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, strings.TrimSuffix(dir, "/")+"/")
}
