package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

var (
	ErrTGATruncated   = errors.New("tga data truncated")
	ErrTGAUnsupported = errors.New("unsupported tga layout")
)

// DecodeTGA decodes an uncompressed or RLE true-color TGA file (24 or 32 bpp).
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes", ErrTGATruncated, len(data))
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field", ErrTGATruncated)
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		stride:      bpp / 8,
		width:       width,
		height:      height,
		topToBottom: topToBottom,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	stride      int
	width       int
	height      int
	topToBottom bool
}

// pixel reads one BGR(A) pixel from the stream as RGBA.
func (d *tgaDecoder) pixel() ([4]uint8, bool) {
	if d.pos+d.stride > len(d.src) {
		return [4]uint8{}, false
	}
	p := d.src[d.pos:]
	c := [4]uint8{p[2], p[1], p[0], 255}
	if d.stride == 4 {
		c[3] = p[3]
	}
	d.pos += d.stride
	return c, true
}

// put stores c at linear pixel index n in file order. Bottom-up files are
// flipped so row 0 of the result is the top of the picture.
func (d *tgaDecoder) put(n int, c [4]uint8) {
	x, y := n%d.width, n/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	i := d.img.PixOffset(x, y)
	copy(d.img.Pix[i:i+4], c[:])
}

func (d *tgaDecoder) raw() error {
	total := d.width * d.height
	if len(d.src) < total*d.stride {
		return fmt.Errorf("%w: pixel data", ErrTGATruncated)
	}
	for n := 0; n < total; n++ {
		c, _ := d.pixel()
		d.put(n, c)
	}
	return nil
}

// rle decodes run-length packets. A stream that ends early leaves the
// remaining pixels transparent black.
func (d *tgaDecoder) rle() error {
	total := d.width * d.height
	n := 0
	for n < total && d.pos < len(d.src) {
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			c, ok := d.pixel()
			if !ok {
				return nil
			}
			for i := 0; i < count && n < total; i++ {
				d.put(n, c)
				n++
			}
			continue
		}

		for i := 0; i < count && n < total; i++ {
			c, ok := d.pixel()
			if !ok {
				return nil
			}
			d.put(n, c)
			n++
		}
	}
	return nil
}
