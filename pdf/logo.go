package pdf

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// logoDPMM is the pixel density logos are resampled to, in dots per mm (about 200 dpi).
const logoDPMM = 8

// prepareLogo decodes raw, shrinks it to fit a boxW x boxH mm box and re-encodes
// it as PNG. It returns the PNG and the drawn size in mm, keeping the aspect ratio.
func prepareLogo(raw []byte, boxW, boxH float64) ([]byte, float64, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode logo: %w", err)
	}
	img = imaging.Fit(img, int(boxW*logoDPMM), int(boxH*logoDPMM), imaging.Lanczos)
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, 0, fmt.Errorf("decode logo: empty image")
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, 0, 0, fmt.Errorf("encode logo: %w", err)
	}
	scale := min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	return buf.Bytes(), float64(b.Dx()) * scale, float64(b.Dy()) * scale, nil
}
