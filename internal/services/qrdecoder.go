package services

import (
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRNotFound is the sentinel payload returned when no QR code is present on
// the page. A missing code is an expected outcome, not an error.
const QRNotFound = "QR code non trouvé"

type QRDecoderService interface {
	// Decode scans the rendered page exactly once. When several codes are
	// present the first one found by scan order wins.
	Decode(page *RenderedPage) string
}

type qrDecoderService struct {
	reader gozxing.Reader
}

func NewQRDecoderService() QRDecoderService {
	return &qrDecoderService{reader: qrcode.NewQRCodeReader()}
}

func (q *qrDecoderService) Decode(page *RenderedPage) string {
	img := page.Image()
	if img == nil {
		return QRNotFound
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return QRNotFound
	}

	result, err := q.reader.Decode(bmp, nil)
	if err != nil || result == nil {
		return QRNotFound
	}

	return result.GetText()
}
