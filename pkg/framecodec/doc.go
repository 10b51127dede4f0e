// Package framecodec converts between raw frame bytes and images.
//
// A frame is Width*Height pixels of 8-bit RGBA in row-major order with no
// header or padding, which is exactly the Pix layout of a 512x512
// *image.RGBA.
//
// # Usage
//
//	img, err := framecodec.Decode(pix)
//	if err != nil {
//	    return err
//	}
//	flat := framecodec.FlattenAlpha(img)
//	out := framecodec.Encode(flat)
package framecodec
