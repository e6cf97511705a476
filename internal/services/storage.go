package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type StorageService interface {
	SaveFile(file *multipart.FileHeader) (string, string, error)
	SaveArtifact(verificationID string, filename string, data []byte) (string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureDirs() error
}

type storageService struct {
	uploadPath   string
	artifactPath string
}

func NewStorageService(uploadPath, artifactPath string) StorageService {
	return &storageService{
		uploadPath:   uploadPath,
		artifactPath: artifactPath,
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.uploadPath, s.artifactPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (s *storageService) SaveFile(file *multipart.FileHeader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", "", fmt.Errorf("invalid file extension: %s", ext)
	}

	// Generate the unique filename
	uniqueFilename := fmt.Sprintf("diploma_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	// Open source file
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Create destination file
	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Copy file
	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) SaveArtifact(verificationID string, filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", verificationID, filepath.Base(filename))
	path := filepath.Join(s.artifactPath, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}

	return path, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
