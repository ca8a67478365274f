package vault

import (
	"path/filepath"
	"strings"
)

var extensionTypes = map[FileType][]string{
	FileTypeImage:    {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
	FileTypeDocument: {"doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "rtf", "odt"},
	FileTypeVideo:    {"mp4", "avi", "mov", "wmv", "mkv", "webm"},
	FileTypeAudio:    {"mp3", "wav", "ogg", "flac", "aac"},
	FileTypeArchive:  {"zip", "rar", "7z", "tar", "gz"},
	FileTypeCode:     {"js", "ts", "jsx", "tsx", "html", "css", "json", "py", "java", "c", "cpp", "cs", "php", "rb", "go"},
	FileTypePDF:      {"pdf"},
}

var typeByExtension = func() map[string]FileType {
	m := make(map[string]FileType)
	for fileType, exts := range extensionTypes {
		for _, ext := range exts {
			m[ext] = fileType
		}
	}
	return m
}()

// Extension returns the extension of name without the leading dot.
func Extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// FileTypeFromExtension maps an extension (any case, no dot) to its FileType.
func FileTypeFromExtension(ext string) FileType {
	if fileType, ok := typeByExtension[strings.ToLower(ext)]; ok {
		return fileType
	}
	return FileTypeOther
}

// PreviewMIME returns the MIME type used to preview item, and false when
// the type has no preview.
func PreviewMIME(item FileItem) (string, bool) {
	ext := strings.ToLower(item.Extension)

	switch item.Type {
	case FileTypeImage:
		if ext == "svg" {
			return "image/svg+xml", true
		}
		if ext == "jpg" {
			ext = "jpeg"
		}
		return "image/" + ext, true
	case FileTypePDF:
		return "application/pdf", true
	case FileTypeVideo:
		return "video/" + ext, true
	case FileTypeAudio:
		return "audio/" + ext, true
	default:
		return "", false
	}
}
