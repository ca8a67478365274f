package vault

import (
	"fmt"
	"time"
)

// FileType groups files by extension for icons, search and preview.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeArchive  FileType = "archive"
	FileTypeCode     FileType = "code"
	FileTypePDF      FileType = "pdf"
	FileTypeOther    FileType = "other"
)

// FileItem is the metadata of one stored file. Size is the plaintext size.
type FileItem struct {
	ID           string    `toml:"id"`
	Name         string    `toml:"name"`
	Size         int64     `toml:"size"`
	Type         FileType  `toml:"type"`
	LastModified time.Time `toml:"last_modified"`
	Encrypted    bool      `toml:"encrypted"`
	Path         string    `toml:"path"`
	Extension    string    `toml:"extension"`
	Favorited    bool      `toml:"favorited"`
	StoredSize   int64     `toml:"stored_size"`
}

// Folder is one node of the folder tree.
type Folder struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	Path string `toml:"path"`
	// Parent is the id of the parent folder, empty for the root.
	Parent     string     `toml:"parent"`
	Files      []FileItem `toml:"files"`
	Subfolders []string   `toml:"subfolders"`
}

func (f *Folder) clone() Folder {
	c := *f
	c.Files = append([]FileItem(nil), f.Files...)
	c.Subfolders = append([]string(nil), f.Subfolders...)
	return c
}

type SortType string

const (
	SortByName SortType = "name"
	SortBySize SortType = "size"
	SortByDate SortType = "date"
	SortByType SortType = "type"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortConfig struct {
	Type      SortType
	Direction SortDirection
}

// DefaultSort orders by name, ascending.
var DefaultSort = SortConfig{Type: SortByName, Direction: SortAsc}

// ParseSort validates a sort type and direction given as strings.
func ParseSort(sortType, direction string) (SortConfig, error) {
	config := SortConfig{Type: SortType(sortType), Direction: SortDirection(direction)}

	switch config.Type {
	case SortByName, SortBySize, SortByDate, SortByType:
	default:
		return SortConfig{}, fmt.Errorf("unknown sort type %q", sortType)
	}

	switch config.Direction {
	case SortAsc, SortDesc:
	default:
		return SortConfig{}, fmt.Errorf("unknown sort direction %q", direction)
	}

	return config, nil
}

// ViewMode controls how listings are rendered.
type ViewMode struct {
	Type        string
	ShowDetails bool
}

// ItemKind tells files and folders apart when resolving ids.
type ItemKind int

const (
	KindFile ItemKind = iota + 1
	KindFolder
)
