package loans

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"library-backend/internal/platform/apierr"
)

func seedExport(t *testing.T, svc *Service) {
	t.Helper()
	req := loanReq(3, "2024-01-01", "2024-01-11", "10")
	req.PersonName = "山田太郎"
	req.BookName = "プログラミング言語Go"
	_, err := svc.CreateLoan(context.Background(), req)
	require.NoError(t, err)
}

func TestExportCSV_UTF8(t *testing.T) {
	svc, _ := newTestService(t, nil)
	seedExport(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, EncodingUTF8))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{
		"1", "s-1", "山田太郎", "3", "プログラミング言語Go",
		"2024-01-01", "2024-01-11", "10", "10", "100", StatusPending,
	}, records[1])
}

func TestExportCSV_UTF8BOM(t *testing.T) {
	svc, _ := newTestService(t, nil)
	seedExport(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, EncodingUTF8BOM))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestExportCSV_ShiftJISRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, nil)
	seedExport(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, EncodingSJIS))
	assert.NotContains(t, buf.String(), "山田太郎")

	decoded, err := io.ReadAll(transform.NewReader(&buf, japanese.ShiftJIS.NewDecoder()))
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(decoded)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "山田太郎", records[1][2])
	assert.Equal(t, "プログラミング言語Go", records[1][4])
}

func TestExportCSV_UnknownEncoding(t *testing.T) {
	svc, _ := newTestService(t, nil)
	err := svc.ExportCSV(context.Background(), io.Discard, "latin1")
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
}
