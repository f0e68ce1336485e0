package services

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/getsentry/sentry-go"
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".heif", ".webp"}

// IsAllowedImageUpload checks the garment photo extension before presigning.
func IsAllowedImageUpload(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return slices.Contains(allowedImageExtensions, ext)
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

func BoolPointer(b bool) *bool {
	return &b
}

func ReadFileFromUrl(url string) ([]byte, error) {
	httpClient := &http.Client{}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	// Set headers to prevent caching
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	// Perform the HTTP request
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %v", err)
	}
	defer resp.Body.Close()

	// Check response status
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}

	// Read the file content
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	return content, nil
}

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func CreateTempFile(data []byte, filename string) (string, error) {
	// Create a temporary file with the given filename as a pattern
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "temp-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer tempFile.Close()
	// Write bytes to the temporary file
	if _, err := tempFile.Write(data); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %v", err)
	}

	// Return the path to the temporary file
	return tempFile.Name(), nil
}

// ExtractZipImages extracts garment photos from a bulk closet import zip and
// creates temporary files for them. Only processes files in the root
// directory of the zip. Returns a slice of temporary file paths.
func ExtractZipImages(zipBytes []byte, zipFileName string, userID uint) ([]string, error) {
	// Create temp file for zip
	zipPath, err := CreateTempFile(zipBytes, zipFileName)
	if err != nil {
		return nil, fmt.Errorf("error creating temp zip file: %w", err)
	}
	defer os.Remove(zipPath)

	// Open zip file
	zipReader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("error opening zip file: %w", err)
	}
	defer zipReader.Close()

	var tempFiles []string
	if len(zipReader.File) == 0 {
		return nil, fmt.Errorf("zip file is empty")
	}
	if len(zipReader.File) > 10 {
		return nil, fmt.Errorf("Zip file contains more than 10 files!")
	}
	for i, file := range zipReader.File {
		// Skip directories and non-root files
		if file.FileInfo().IsDir() || strings.Contains(file.Name, "/") || strings.Contains(file.Name, "\\") {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name))
		if !slices.Contains(allowedImageExtensions, ext) {
			sentry.CaptureException(fmt.Errorf("[User: %v] file %s is not a valid image file", userID, file.Name))
			continue
		}
		// Check if file size is less than 50MB
		if file.UncompressedSize64 > 50*1024*1024 {
			return nil, fmt.Errorf("[User: %v] file %s is larger than 50MB", userID, file.Name)
		}
		// Open file in zip
		f, err := file.Open()
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[User: %v] error reading file %s from zip: %w", userID, file.Name, err))
			continue
		}

		// Read image bytes
		imgBytes, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[User: %v] error reading image bytes %s: %w", userID, file.Name, err))
			continue
		}

		// Create temp file for image
		imgFileName := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(zipFileName, filepath.Ext(zipFileName)), i, ext)
		imgPath, err := CreateTempFile(imgBytes, imgFileName)
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[User: %v] error creating temp file for image %s: %w", userID, file.Name, err))
			continue
		}
		tempFiles = append(tempFiles, imgPath)
	}

	if len(tempFiles) == 0 {
		return nil, fmt.Errorf("no valid image files found in zip")
	}
	return tempFiles, nil
}

func DecodeBase64EnvPrivateKey(envKey string) (string, error) {
	// Get base64 encoded private key from environment
	base64Key := os.Getenv(envKey)
	if base64Key == "" {
		return "", fmt.Errorf("%s environment variable is not set", envKey)
	}

	// Decode from base64
	decodedBytes, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 private key: %v", err)
	}

	// Convert to string
	secret := string(decodedBytes)

	return secret, nil
}
