package wonderswan

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// SaveFile is battery backed memory mapped onto a file, so every store of
// the emulated program reaches the disk without an explicit save step.
type SaveFile struct {
	path string
	file *os.File
	mmap mmap.MMap
	size int
}

// OpenSaveFile maps path into memory, creating it with size zero bytes
// (or fill bytes) when it does not exist yet.
func OpenSaveFile(path string, size int, fill byte) (*SaveFile, error) {
	_, err := os.Stat(path)
	created := false
	if os.IsNotExist(err) {
		if err := createSaveFile(path, size, fill); err != nil {
			return nil, err
		}
		created = true
	} else if err != nil {
		return nil, fmt.Errorf("save file %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("save file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("save file %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		if err := file.Truncate(int64(size)); err != nil {
			file.Close()
			return nil, fmt.Errorf("save file %s: %w", path, err)
		}
	}

	m, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("save file %s: %w", path, err)
	}

	if created {
		log.Printf("Save: file created. Path: %s\n", path)
	} else {
		log.Printf("Save: file loaded. Path: %s\n", path)
	}

	return &SaveFile{
		path: path,
		file: file,
		mmap: m,
		size: size,
	}, nil
}

func createSaveFile(path string, size int, fill byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create save file %s: %w", path, err)
	}
	defer file.Close()

	data := make([]byte, size)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write save file %s: %w", path, err)
	}
	return nil
}

func (s *SaveFile) Path() string {
	return s.path
}

// Bytes is the live mapping; writes go straight to the file.
func (s *SaveFile) Bytes() []byte {
	return s.mmap[:s.size]
}

func (s *SaveFile) Flush() error {
	return s.mmap.Flush()
}

func (s *SaveFile) Close() error {
	if err := s.mmap.Unmap(); err != nil {
		s.file.Close()
		return fmt.Errorf("unmap %s: %w", s.path, err)
	}
	return s.file.Close()
}

func fileNameWithoutExtension(filePath string) string {
	fileName := filepath.Base(filePath)
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
