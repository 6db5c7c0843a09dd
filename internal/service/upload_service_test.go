package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	uploads []string
	err     error
}

func (s *fakeStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, name)
	return "https://files.example.com/" + name, nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func zipBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("notes.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("solutions for chapter three"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestUploadStoresTextFile(t *testing.T) {
	storage := &fakeStorage{}
	repo := &memoryUploadRepo{}
	svc := NewUploadService(storage, repo, 1, testLogger())

	content := []byte("my essay about rivers")
	userID := uint(2)
	result, err := svc.Upload(context.Background(), fileHeader(t, "My Essay.TXT", content), &userID)
	require.NoError(t, err)

	require.Equal(t, "my-essay.txt", result.FileName)
	require.Equal(t, "https://files.example.com/my-essay.txt", result.URL)
	require.Equal(t, "text/plain", result.MimeType)
	require.Equal(t, int64(len(content)), result.SizeBytes)

	sum := sha256.Sum256(content)
	require.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)

	require.Len(t, repo.records, 1)
	require.NotNil(t, repo.records[0].UserID)
	require.Equal(t, userID, *repo.records[0].UserID)
}

func TestUploadAcceptsPDFAndZip(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewUploadService(storage, &memoryUploadRepo{}, 1, testLogger())

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	result, err := svc.Upload(context.Background(), fileHeader(t, "report.pdf", pdf), nil)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.MimeType)

	result, err = svc.Upload(context.Background(), fileHeader(t, "archive.zip", zipBytes(t)), nil)
	require.NoError(t, err)
	require.Equal(t, "application/zip", result.MimeType)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := NewUploadService(&fakeStorage{}, &memoryUploadRepo{}, 1, testLogger())

	big := bytes.Repeat([]byte("a"), 2<<20)
	_, err := svc.Upload(context.Background(), fileHeader(t, "big.txt", big), nil)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	svc := NewUploadService(&fakeStorage{}, &memoryUploadRepo{}, 1, testLogger())

	binary := []byte{0x7f, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00, 0x00, 0x00}
	_, err := svc.Upload(context.Background(), fileHeader(t, "tool.bin", binary), nil)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
}

func TestUploadRequiresFile(t *testing.T) {
	svc := NewUploadService(&fakeStorage{}, &memoryUploadRepo{}, 1, testLogger())

	_, err := svc.Upload(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestUploadSanitizesHostileFilename(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewUploadService(storage, &memoryUploadRepo{}, 1, testLogger())

	result, err := svc.Upload(context.Background(), fileHeader(t, "../../etc/Pass wd!.txt", []byte("plain text")), nil)
	require.NoError(t, err)
	require.NotContains(t, result.FileName, "/")
	require.NotContains(t, result.FileName, "..")
}
