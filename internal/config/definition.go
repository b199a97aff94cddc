package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	saerrors "github.com/systmms/sapauto/internal/errors"
)

// Known top-level sections. Every other table is foreign and is carried
// through load and save untouched.
const (
	SectionBuild    = "build"
	SectionGlobal   = "global"
	SectionTcode    = "tcode"
	SectionLoop     = "loop"
	SectionSequence = "sequence"

	// LegacySection is the single flat section of the pre-layered format.
	LegacySection = "sap_config"
)

// DefaultInstanceID namespaces credential files when none is configured.
const DefaultInstanceID = "rs"

// Format tells where a Definition came from.
type Format string

const (
	FormatDefault Format = "default"
	FormatLayered Format = "layered"
	FormatLegacy  Format = "legacy"
)

// Definition is the layered sapauto.toml content. Nil sections were absent
// from the file; an empty non-nil section was present but empty.
type Definition struct {
	Global   *GlobalConfig
	Tcodes   map[string]*TcodeConfig
	Loop     *LoopConfig
	Sequence *SequenceConfig
	Build    map[string]string
	Foreign  map[string]map[string]string

	foreignOrder []string
	format       Format
}

var userHomeDir = os.UserHomeDir

// DefaultReportsDir is ~/Documents/Reports, or "." without a home directory.
func DefaultReportsDir() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Documents", "Reports")
}

func defaultGlobal() *GlobalConfig {
	return &GlobalConfig{
		InstanceID: DefaultInstanceID,
		ReportsDir: DefaultReportsDir(),
	}
}

// Default returns the configuration used when no file exists: a global
// section with defaults and nothing else.
func Default() *Definition {
	return &Definition{Global: defaultGlobal(), format: FormatDefault}
}

// Format reports whether the definition was defaulted, read from the
// layered format, or upgraded from the legacy format.
func (d *Definition) Format() Format {
	if d.format == "" {
		return FormatLayered
	}
	return d.format
}

func (d *Definition) ensureGlobal() *GlobalConfig {
	if d.Global == nil {
		d.Global = defaultGlobal()
	}
	return d.Global
}

// InstanceID returns the configured instance id or DefaultInstanceID.
func (d *Definition) InstanceID() string {
	if d.Global != nil && d.Global.InstanceID != "" {
		return d.Global.InstanceID
	}
	return DefaultInstanceID
}

// ReportsDir returns the configured reports directory or DefaultReportsDir.
func (d *Definition) ReportsDir() string {
	if d.Global != nil && d.Global.ReportsDir != "" {
		return d.Global.ReportsDir
	}
	return DefaultReportsDir()
}

// DefaultTcode returns the global default transaction code, if any.
func (d *Definition) DefaultTcode() string {
	if d.Global == nil {
		return ""
	}
	return d.Global.DefaultTcode
}

func (d *Definition) SetInstanceID(v string) {
	d.ensureGlobal().InstanceID = v
}

func (d *Definition) SetReportsDir(v string) {
	d.ensureGlobal().ReportsDir = v
}

// GetTcodeConfig returns the effective parameter set for tcode.
//
// The "tcode" key is the loop's tcode on loop runs and the global default
// otherwise. A [tcode.X] section for the requested code is layered on top
// and wins outright: loop parameters are not consulted. Without one, loop
// runs take the loop parameters, with a "{tcode}_" prefix stripped so a
// shared loop can target one code. The second result is false when nothing
// was found.
func (d *Definition) GetTcodeConfig(tcode string, loopRun bool) (map[string]string, bool) {
	result := make(map[string]string)

	if loopRun {
		if d.Loop != nil && d.Loop.Tcode != "" {
			result[KeyTcode] = d.Loop.Tcode
		}
	} else if d.DefaultTcode() != "" {
		result[KeyTcode] = d.DefaultTcode()
	}

	if tc, ok := d.Tcodes[tcode]; ok && tc != nil {
		for k, v := range tc.toMap() {
			result[k] = v
		}
		return result, len(result) > 0
	}

	if loopRun && d.Loop != nil {
		prefix := tcode + "_"
		var targeted []string
		for _, k := range sortedKeys(d.Loop.Params) {
			if strings.HasPrefix(k, prefix) {
				targeted = append(targeted, k)
				continue
			}
			result[k] = d.Loop.Params[k]
		}
		// prefixed keys are applied last so they win over shared ones
		for _, k := range targeted {
			result[strings.TrimPrefix(k, prefix)] = d.Loop.Params[k]
		}
	}

	if len(result) == 0 {
		return nil, false
	}
	return result, true
}

// lookup resolves a section name such as "global", "tcode.VT11" or a
// foreign section read from the file. With create set, missing known
// sections are added; foreign sections are never created.
func (d *Definition) lookup(name string, create bool) (section, error) {
	if code, ok := tcodeSectionName(name); ok {
		if code == "" {
			return nil, unknownSection(name)
		}
		tc := d.Tcodes[code]
		if tc == nil {
			if !create {
				return nil, missingSection(name)
			}
			if d.Tcodes == nil {
				d.Tcodes = make(map[string]*TcodeConfig)
			}
			tc = &TcodeConfig{}
			d.Tcodes[code] = tc
		}
		return tc, nil
	}

	switch name {
	case SectionGlobal:
		if d.Global == nil && !create {
			return nil, missingSection(name)
		}
		return d.ensureGlobal(), nil
	case SectionLoop:
		if d.Loop == nil {
			if !create {
				return nil, missingSection(name)
			}
			d.Loop = &LoopConfig{}
		}
		return d.Loop, nil
	case SectionSequence:
		if d.Sequence == nil {
			if !create {
				return nil, missingSection(name)
			}
			d.Sequence = &SequenceConfig{}
		}
		return d.Sequence, nil
	case SectionBuild:
		if d.Build == nil {
			if !create {
				return nil, missingSection(name)
			}
			d.Build = make(map[string]string)
		}
		return mapSection(d.Build), nil
	}
	if values, ok := d.Foreign[name]; ok {
		if values == nil {
			values = make(map[string]string)
			d.Foreign[name] = values
		}
		return mapSection(values), nil
	}
	return nil, unknownSection(name)
}

func tcodeSectionName(name string) (string, bool) {
	for _, sep := range []string{".", ":"} {
		if code, ok := strings.CutPrefix(name, SectionTcode+sep); ok {
			return code, true
		}
	}
	return "", false
}

func unknownSection(name string) error {
	return saerrors.ConfigError{
		Field:      "section",
		Value:      name,
		Message:    "unknown section",
		Suggestion: "Use global, build, tcode.<CODE>, loop, sequence or a custom section already in the file",
	}
}

func missingSection(name string) error {
	return saerrors.ConfigError{
		Field:   "section",
		Value:   name,
		Message: "section is not configured",
	}
}

// SetValue sets key in the named section, creating the section if needed.
// Standard keys set typed fields; any other key becomes a parameter.
func (d *Definition) SetValue(sectionName, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return saerrors.ConfigError{Field: "key", Message: "key must not be empty"}
	}
	s, err := d.lookup(sectionName, true)
	if err != nil {
		return err
	}
	s.set(key, value)
	return nil
}

// UnsetValue removes key from the named section.
func (d *Definition) UnsetValue(sectionName, key string) error {
	s, err := d.lookup(sectionName, false)
	if err != nil {
		return err
	}
	s.unset(key)
	return nil
}

// RemoveSection drops a known or foreign section entirely.
func (d *Definition) RemoveSection(sectionName string) error {
	if _, err := d.lookup(sectionName, false); err != nil {
		return err
	}
	if code, ok := tcodeSectionName(sectionName); ok {
		delete(d.Tcodes, code)
		return nil
	}
	switch sectionName {
	case SectionGlobal:
		d.Global = nil
	case SectionLoop:
		d.Loop = nil
	case SectionSequence:
		d.Sequence = nil
	case SectionBuild:
		d.Build = nil
	default:
		delete(d.Foreign, sectionName)
	}
	return nil
}

// Section returns a copy of the values of a known or foreign section.
func (d *Definition) Section(name string) (map[string]string, bool) {
	if values, ok := d.Foreign[name]; ok {
		return copyMap(values), true
	}
	s, err := d.lookup(name, false)
	if err != nil {
		return nil, false
	}
	return s.toMap(), true
}

// NamedSection is one table of the file, in save order.
type NamedSection struct {
	Name   string
	Values map[string]string
}

// Sections lists every present section in the order Save writes them:
// foreign sections, build, global, each tcode, loop, sequence.
func (d *Definition) Sections() []NamedSection {
	var out []NamedSection
	for _, name := range d.foreignNames() {
		out = append(out, NamedSection{Name: name, Values: copyMap(d.Foreign[name])})
	}
	if d.Build != nil {
		out = append(out, NamedSection{Name: SectionBuild, Values: copyMap(d.Build)})
	}
	if d.Global != nil {
		out = append(out, NamedSection{Name: SectionGlobal, Values: d.Global.toMap()})
	}
	for _, code := range d.TcodeNames() {
		out = append(out, NamedSection{Name: SectionTcode + "." + code, Values: d.Tcodes[code].toMap()})
	}
	if d.Loop != nil {
		out = append(out, NamedSection{Name: SectionLoop, Values: d.Loop.toMap()})
	}
	if d.Sequence != nil {
		out = append(out, NamedSection{Name: SectionSequence, Values: d.Sequence.toMap()})
	}
	return out
}

// TcodeNames returns the configured transaction codes, sorted.
func (d *Definition) TcodeNames() []string {
	names := make([]string, 0, len(d.Tcodes))
	for code, tc := range d.Tcodes {
		if tc != nil {
			names = append(names, code)
		}
	}
	sort.Strings(names)
	return names
}

// foreignNames keeps the order foreign sections had in the file; sections
// added since come after it, sorted.
func (d *Definition) foreignNames() []string {
	seen := make(map[string]bool, len(d.Foreign))
	var names []string
	for _, name := range d.foreignOrder {
		if _, ok := d.Foreign[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	for _, name := range sortedKeys(d.Foreign) {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}
