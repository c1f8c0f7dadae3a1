// Package attachments keeps property documents on disk next to their
// database records. Files live under <root>/<propertyID>/ with a sanitized
// unique name; the record is created only after the file is in place.
package attachments

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hotelcrm/internal/logging"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// MaxFileSize is the default upload limit.
const MaxFileSize int64 = 50 << 20

// ErrFileMissing reports a record whose file is no longer on disk.
var ErrFileMissing = errors.New("attachment file missing")

// fileKind describes one accepted extension: the MIME type recorded for it
// and the detected content types that may carry it.
type fileKind struct {
	mime     string
	contents []string
}

var supported = map[string]fileKind{
	".pdf": {
		mime:     "application/pdf",
		contents: []string{"application/pdf"},
	},
	".xlsx": {
		mime:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		contents: []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	},
	".xls": {
		mime:     "application/vnd.ms-excel",
		contents: []string{"application/vnd.ms-excel", "application/x-ole-storage"},
	},
}

const maxBaseLen = 50

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Store writes attachment files and keeps their records in step.
type Store struct {
	root        string
	attachments types.AttachmentRepository
	properties  types.PropertyRepository
	maxSize     int64
	logger      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSize overrides the upload limit.
func WithMaxSize(n int64) Option {
	return func(s *Store) { s.maxSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// New returns a Store rooted at root, usually Config.AttachmentsPath().
func New(root string, store types.Store, opts ...Option) *Store {
	s := &Store{
		root:        root,
		attachments: store.Attachments(),
		properties:  store.Properties(),
		maxSize:     MaxFileSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory holding every property folder.
func (s *Store) Root() string { return s.root }

// PropertyDir returns the folder of one property. Ids that are empty or
// would leave the attachments root are rejected.
func (s *Store) PropertyDir(propertyID string) (string, error) {
	if !validPropertyID(propertyID) {
		return "", fmt.Errorf("%w: invalid property id %q", types.ErrValidation, propertyID)
	}
	return filepath.Join(s.root, propertyID), nil
}

func validPropertyID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.Contains(id, "..") {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && filepath.Base(id) == id
}

// Supported reports whether a file name has an accepted extension.
func Supported(name string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(name))]
	return ok
}

// UniqueFilename builds the stored name: the sanitized base name cut to 50
// characters, an underscore, eight hex characters, and the lower-cased
// extension.
func UniqueFilename(original string) string {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeChars.ReplaceAllString(base, "_")
	if len(base) > maxBaseLen {
		base = base[:maxBaseLen]
	}
	return base + "_" + uuid.NewString()[:8] + ext
}

// SaveFile copies the file at src into the property's folder and records it.
func (s *Store) SaveFile(propertyID, src string) (*types.PropertyAttachment, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()
	return s.Save(propertyID, filepath.Base(src), f)
}

// Save streams r into the property's folder under a unique name and creates
// the attachment record. The extension of originalName decides the recorded
// MIME type; the content must match it. Nothing is kept when any step fails.
func (s *Store) Save(propertyID, originalName string, r io.Reader) (*types.PropertyAttachment, error) {
	dir, err := s.PropertyDir(propertyID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(originalName) == "" {
		return nil, fmt.Errorf("%w: file name is required", types.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	kind, ok := supported[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (accepted: .pdf, .xlsx, .xls)", types.ErrUnsupportedFileType, ext)
	}

	exists, err := s.properties.Exists(propertyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("property %s: %w", propertyID, types.ErrNotFound)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", originalName, err)
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !matches(detected, kind.contents) {
		return nil, fmt.Errorf("%w: %s looks like %s", types.ErrUnsupportedFileType, originalName, detected.String())
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	filename := UniqueFilename(originalName)
	path := filepath.Join(dir, filename)

	size, err := s.write(path, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, err
	}

	att, err := s.attachments.Create(types.CreateAttachmentRequest{
		PropertyID:       propertyID,
		Filename:         filename,
		OriginalFilename: originalName,
		FilePath:         path,
		FileType:         kind.mime,
		FileSize:         size,
	})
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	s.logger.Info("attachment saved",
		zap.String("property_id", propertyID),
		zap.String("filename", filename),
		zap.String("size", humanize.IBytes(uint64(size))),
	)
	return att, nil
}

// write copies r to path through a temp file in the same folder, enforcing
// the size limit.
func (s *Store) write(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if n > s.maxSize {
		return 0, fmt.Errorf("%w: limit is %s", types.ErrFileTooLarge, humanize.IBytes(uint64(s.maxSize)))
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("renaming to %s: %w", path, err)
	}
	ok = true
	return n, nil
}

// Path returns the location of an attachment's file, checking that it is
// still on disk.
func (s *Store) Path(id string) (string, error) {
	att, err := s.attachments.GetByID(id)
	if err != nil {
		return "", err
	}
	if att == nil {
		return "", fmt.Errorf("attachment %s: %w", id, types.ErrNotFound)
	}
	if _, err := os.Stat(att.FilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", att.FilePath, ErrFileMissing)
		}
		return "", err
	}
	return att.FilePath, nil
}

// Delete removes the attachment's file, if still present, and then its
// record.
func (s *Store) Delete(id string) error {
	att, err := s.attachments.GetByID(id)
	if err != nil {
		return err
	}
	if att == nil {
		return fmt.Errorf("attachment %s: %w", id, types.ErrNotFound)
	}
	if err := os.Remove(att.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", att.FilePath, err)
	}
	if err := s.attachments.Delete(id); err != nil {
		return err
	}
	s.logger.Info("attachment deleted", zap.String("id", id), zap.String("filename", att.Filename))
	return nil
}

// DeleteProperty deletes the property, whose attachment records go with it
// by cascade, and then removes its folder including any orphan files.
func (s *Store) DeleteProperty(propertyID string) error {
	dir, err := s.PropertyDir(propertyID)
	if err != nil {
		return err
	}
	if err := s.properties.Delete(propertyID); err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// matches reports whether m or one of its parents is among accepted.
func matches(m *mimetype.MIME, accepted []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}
