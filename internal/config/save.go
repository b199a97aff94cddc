package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/metrics"
)

// Encode writes the definition as TOML: foreign sections in their original
// order, then build, global, every tcode, loop and sequence. Every value is
// written as a quoted string.
func (d *Definition) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""

	tcodesWritten := false
	for _, s := range d.Sections() {
		if _, ok := tcodeSectionName(s.Name); ok {
			// all tcodes go out together as subtables of [tcode]
			if !tcodesWritten {
				if err := d.encodeTcodes(enc); err != nil {
					return err
				}
				tcodesWritten = true
			}
			continue
		}
		if err := enc.Encode(map[string]map[string]string{s.Name: nonNil(s.Values)}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definition) encodeTcodes(enc *toml.Encoder) error {
	tcodes := make(map[string]map[string]string, len(d.Tcodes))
	for _, code := range d.TcodeNames() {
		tcodes[code] = d.Tcodes[code].toMap()
	}
	return enc.Encode(map[string]map[string]map[string]string{SectionTcode: tcodes})
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Save writes the definition to path atomically, creating parent
// directories. Failures are ConfigErrors wrapping the OS error.
func (d *Definition) Save(path string) (err error) {
	defer func() { metrics.ConfigOp("save", metrics.Result(err)) }()

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return saerrors.ConfigError{Message: "failed to encode configuration", Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return saerrors.ConfigError{
				Field:   "path",
				Value:   path,
				Message: "failed to create configuration directory",
				Err:     err,
			}
		}
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return saerrors.ConfigError{
			Field:   "path",
			Value:   path,
			Message: "failed to write configuration file",
			Err:     err,
		}
	}
	return nil
}
