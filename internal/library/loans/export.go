package loans

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"library-backend/internal/platform/apierr"
)

const (
	EncodingUTF8    = "utf8"
	EncodingUTF8BOM = "utf8bom"
	EncodingSJIS    = "sjis"
)

var exportHeader = []string{
	"loan_id", "student_id", "person_name", "book_id", "book_name",
	"from_date", "to_date", "days", "price_per_day", "amount", "status",
}

// ExportContentType returns the Content-Type for an export encoding.
func ExportContentType(enc string) string {
	if enc == EncodingSJIS {
		return "text/csv; charset=Shift_JIS"
	}
	return "text/csv; charset=utf-8"
}

func encoderFor(enc string) (*encoding.Encoder, error) {
	switch enc {
	case "", EncodingUTF8:
		return nil, nil
	case EncodingUTF8BOM:
		// Excel は BOM 無しの UTF-8 を文字化けさせる
		return unicode.UTF8BOM.NewEncoder(), nil
	case EncodingSJIS:
		// Windowsの「ANSI（CP932）」相当。表現できない文字は置換する
		return encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()), nil
	default:
		return nil, apierr.Invalidf("encoding must be one of %s, %s, %s", EncodingUTF8, EncodingUTF8BOM, EncodingSJIS)
	}
}

// GET /loans/export
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, enc string) error {
	e, err := encoderFor(enc)
	if err != nil {
		return err
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	var tw io.WriteCloser
	out := w
	if e != nil {
		tw = transform.NewWriter(w, e)
		out = tw
	}
	cw := csv.NewWriter(out)

	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, l := range rows {
		record := []string{
			strconv.FormatInt(l.LoanID, 10),
			l.StudentID,
			l.PersonName,
			strconv.FormatInt(l.BookID, 10),
			l.BookName,
			l.FromDate.Format(DateLayout),
			l.ToDate.Format(DateLayout),
			strconv.Itoa(l.Days()),
			l.PricePerDay.String(),
			l.Amount().String(),
			l.Status(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}
