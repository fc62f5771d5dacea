package render

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// Converter is the external program used for SVG rasterization.
const Converter = "rsvg-convert"

// ErrConverterMissing is returned when Converter is not on PATH.
var ErrConverterMissing = errors.New(Converter + " not found (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// ConverterAvailable reports whether PDF and PNG output can be produced.
func ConverterAvailable() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf", nil)
}

// ToPNG converts an SVG document to PNG. scale multiplies the SVG's
// intrinsic size; values <= 0 mean 1.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "png", []string{"--zoom", strconv.FormatFloat(scale, 'f', 2, 64)})
}

func convert(svg []byte, format string, extra []string) ([]byte, error) {
	bin, err := exec.LookPath(Converter)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", format, ErrConverterMissing)
	}

	cmd := exec.Command(bin, append([]string{"--format", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", Converter, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", Converter, err)
	}
	return out, nil
}
