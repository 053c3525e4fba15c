package workflow

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFMIMEType is the only type admitted into the workflow.
const PDFMIMEType = "application/pdf"

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

// SelectedFile is the document picked for analysis.
type SelectedFile struct {
	Name      string
	Path      string
	SizeBytes int64
	MIMEType  string
	Pages     int // 0 when unknown
}

// IsPDF reports whether the file may be admitted into the workflow.
func (f SelectedFile) IsPDF() bool {
	return f.MIMEType == PDFMIMEType
}

// Open opens the file's content for upload.
func (f SelectedFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Inspect stats and sniffs path into a SelectedFile. It does not validate
// the type; Select does.
func Inspect(path string) (SelectedFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SelectedFile{}, ErrNoFile
	}
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SelectedFile{}, &ValidationError{Msg: fmt.Sprintf("File not found: %s", path)}
		}
		return SelectedFile{}, &ValidationError{Msg: fmt.Sprintf("Cannot access %s", name), Err: err}
	}
	if info.IsDir() {
		return SelectedFile{}, &ValidationError{Msg: fmt.Sprintf("%s is a directory, not a file", name)}
	}

	f, err := os.Open(path)
	if err != nil {
		return SelectedFile{}, &ValidationError{Msg: fmt.Sprintf("Cannot read %s", name), Err: err}
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return SelectedFile{}, &ValidationError{Msg: fmt.Sprintf("Cannot read %s", name), Err: err}
	}

	sf := SelectedFile{
		Name:      name,
		Path:      path,
		SizeBytes: info.Size(),
		MIMEType:  DetectMIME(name, head[:n]),
	}
	if sf.IsPDF() {
		sf.Pages = pageCount(f)
	}
	return sf, nil
}

// DetectMIME resolves a file's media type the way a browser file picker
// does: the extension wins, and content is sniffed only when the
// extension is unknown or generic.
func DetectMIME(name string, head []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(head))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

func pageCount(rs io.ReadSeeker) (n int) {
	// pdfcpu can panic on damaged cross-reference tables.
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	count, err := api.PageCount(rs, nil)
	if err != nil {
		return 0
	}
	return count
}
