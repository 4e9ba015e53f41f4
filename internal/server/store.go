package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/propship/internal/domain"
	"github.com/bft-labs/propship/internal/props"
	"github.com/bft-labs/propship/pkg/log"
)

// DirStore writes received record sets into a destination directory.
//
// Writes are check-then-write without locking: two writers racing on one
// name can both pass the existence check, and the later write wins.
type DirStore struct {
	dir    string
	logger log.Logger

	// beforeWrite runs between the existence check and the write.
	beforeWrite func()
}

// NewDirStore creates a store for dir.
func NewDirStore(dir string, logger log.Logger) *DirStore {
	return &DirStore{dir: dir, logger: logger}
}

// Write renders rs and creates a new file named rs.Name.
// It refuses to overwrite an existing file.
func (s *DirStore) Write(rs *domain.RecordSet) error {
	if err := checkName(rs.Name); err != nil {
		stats.FileRefused("invalid_name")
		s.logger.Error("refusing received file with invalid name", log.String("file", rs.Name))
		return err
	}
	path := filepath.Join(s.dir, rs.Name)

	s.logger.Debug("attempting to write file", log.String("path", path))
	if _, err := os.Lstat(path); err == nil {
		stats.FileRefused("exists")
		s.logger.Error("file with that name already exists, cannot write", log.String("file", rs.Name))
		return fmt.Errorf("%s: %w", rs.Name, domain.ErrFileExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		stats.FileRefused("stat_error")
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if s.beforeWrite != nil {
		s.beforeWrite()
	}

	if err := writeFile(path, rs); err != nil {
		stats.FileRefused("write_error")
		s.logger.Error("failed to create received file", log.String("path", path), log.Err(err))
		return fmt.Errorf("write %s: %w", path, err)
	}

	stats.FileWritten()
	s.logger.Info("wrote received file", log.String("path", path), log.Int("entries", rs.Len()))
	return nil
}

func writeFile(path string, rs *domain.RecordSet) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := props.WriteTo(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// checkName accepts plain base names only.
func checkName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%q: %w", name, domain.ErrInvalidName)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%q: %w", name, domain.ErrInvalidName)
	}
	return nil
}
