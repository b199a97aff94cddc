package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/metrics"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Load reads the configuration at path. A missing file yields Default();
// any other read, parse or validation failure is a ConfigError.
func Load(path string) (def *Definition, err error) {
	defer func() { metrics.ConfigOp("load", metrics.Result(err)) }()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, saerrors.ConfigError{
			Field:   "path",
			Value:   path,
			Message: "failed to read configuration file",
			Err:     err,
		}
	}
	return Parse(data)
}

// Parse decodes a configuration document in either the layered or the
// legacy format.
func Parse(data []byte) (*Definition, error) {
	var doc map[string]interface{}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, saerrors.ConfigError{
			Message:    "invalid TOML syntax",
			Suggestion: "Check the reported line for unquoted values or duplicate keys",
			Err:        err,
		}
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	tables := make(map[string]map[string]string, len(doc))
	var tcodes map[string]map[string]string
	for name, raw := range doc {
		table := raw.(map[string]interface{})
		if name == SectionTcode {
			tcodes = make(map[string]map[string]string, len(table))
			for code, sub := range table {
				tcodes[code] = stringifyTable(sub.(map[string]interface{}))
			}
			continue
		}
		tables[name] = stringifyTable(table)
	}

	def := &Definition{}
	_, hasGlobal := tables[SectionGlobal]
	legacy, hasLegacy := tables[LegacySection]

	switch {
	case hasGlobal || tcodes != nil:
		def.format = FormatLayered
	case hasLegacy:
		def.format = FormatLegacy
		def.migrateLegacy(legacy)
		metrics.LegacyMigration()
	default:
		def.format = FormatLayered
	}

	if values, ok := tables[SectionGlobal]; ok {
		def.Global = &GlobalConfig{}
		applyAll(def.Global, values)
	}
	for _, code := range sortedKeys(tcodes) {
		tc := def.tcode(code)
		applyAll(tc, tcodes[code])
	}
	if values, ok := tables[SectionLoop]; ok {
		if def.Loop == nil {
			def.Loop = &LoopConfig{}
		}
		applyAll(def.Loop, values)
	}
	if values, ok := tables[SectionSequence]; ok {
		def.Sequence = &SequenceConfig{}
		applyAll(def.Sequence, values)
	}
	if values, ok := tables[SectionBuild]; ok {
		def.Build = values
	}

	for _, key := range md.Keys() {
		if len(key) != 1 || isKnownSection(key[0]) {
			continue
		}
		if def.Foreign == nil {
			def.Foreign = make(map[string]map[string]string)
		}
		def.Foreign[key[0]] = tables[key[0]]
		def.foreignOrder = append(def.foreignOrder, key[0])
	}

	return def, nil
}

func isKnownSection(name string) bool {
	switch name {
	case SectionBuild, SectionGlobal, SectionTcode, SectionLoop, SectionSequence, LegacySection:
		return true
	}
	return false
}

func (d *Definition) tcode(code string) *TcodeConfig {
	if d.Tcodes == nil {
		d.Tcodes = make(map[string]*TcodeConfig)
	}
	tc, ok := d.Tcodes[code]
	if !ok {
		tc = &TcodeConfig{}
		d.Tcodes[code] = tc
	}
	return tc
}

// migrateLegacy splits the flat [sap_config] section. Keys are visited in
// sorted order so the result does not depend on map iteration. Stripped
// names that match a standard field set that field, and the later key in
// sorted order wins.
func (d *Definition) migrateLegacy(values map[string]string) {
	d.Global = &GlobalConfig{}

	active := values[KeyTcode]
	var tc *TcodeConfig
	if active != "" {
		d.Global.DefaultTcode = active
		tc = d.tcode(active)
	}
	prefix := active + "_"

	for _, key := range sortedKeys(values) {
		value := values[key]
		switch {
		case key == KeyTcode:
			continue
		case strings.HasPrefix(key, "loop_"):
			if d.Loop == nil {
				d.Loop = &LoopConfig{}
			}
			name := strings.TrimPrefix(key, "loop_")
			if param, ok := strings.CutPrefix(name, "param_"); ok {
				name = param
			}
			d.Loop.set(name, value)
		case tc != nil && strings.HasPrefix(key, prefix):
			tc.set(strings.TrimPrefix(key, prefix), value)
		case tc != nil && isTcodeField(key):
			tc.set(key, value)
		default:
			d.Global.set(key, value)
		}
	}
}

func validateDocument(doc map[string]interface{}) error {
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return saerrors.ConfigError{Message: "configuration contains unsupported values", Err: err}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return saerrors.ConfigError{Message: "schema validation error", Err: err}
	}
	if result.Valid() {
		return nil
	}

	desc := result.Errors()[0]
	var details []string
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return saerrors.ConfigError{
		Field:      desc.Field(),
		Message:    "configuration must be flat tables of scalar values:\n  - " + strings.Join(details, "\n  - "),
		Suggestion: "Sections hold key = \"value\" pairs; nested tables are only allowed under [tcode.<CODE>]",
	}
}

func stringifyTable(table map[string]interface{}) map[string]string {
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = stringify(v)
	}
	return out
}

// stringify renders a TOML scalar as the string a user would have written
// for it, so numbers and dates survive a save as quoted strings.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		switch val.Location().String() {
		case "date-local":
			return val.Format("2006-01-02")
		case "time-local":
			return val.Format("15:04:05.999999999")
		case "datetime-local":
			return val.Format("2006-01-02T15:04:05.999999999")
		}
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
