package config

import (
	"sort"
	"strings"
)

// Standard keys of each section. Anything else lands in the section's
// Params bag.
const (
	KeyInstanceID   = "instance_id"
	KeyReportsDir   = "reports_dir"
	KeyDefaultTcode = "default_tcode"
	KeyDateFormat   = "date_format"

	KeyVariant        = "variant"
	KeyLayout         = "layout"
	KeyColumnName     = "column_name"
	KeyDateRangeStart = "date_range_start"
	KeyDateRangeEnd   = "date_range_end"
	KeyByDate         = "by_date"
	KeySerialNumber   = "serial_number"
	KeyTabNumber      = "tab_number"

	KeyTcode           = "tcode"
	KeyIterations      = "iterations"
	KeyDelaySeconds    = "delay_seconds"
	KeySteps           = "steps"
	KeyIntervalSeconds = "interval_seconds"
)

// TcodeFields lists the standard transaction code fields in output order.
var TcodeFields = []string{
	KeyVariant, KeyLayout, KeyColumnName, KeyDateRangeStart,
	KeyDateRangeEnd, KeyByDate, KeySerialNumber, KeyTabNumber,
}

func isTcodeField(key string) bool {
	for _, f := range TcodeFields {
		if f == key {
			return true
		}
	}
	return false
}

// section is implemented by every typed configuration section.
type section interface {
	set(key, value string)
	unset(key string)
	toMap() map[string]string
}

// GlobalConfig holds tool-wide settings.
type GlobalConfig struct {
	InstanceID   string
	ReportsDir   string
	DefaultTcode string
	DateFormat   string
	Params       map[string]string
}

func (g *GlobalConfig) fields() map[string]*string {
	return map[string]*string{
		KeyInstanceID:   &g.InstanceID,
		KeyReportsDir:   &g.ReportsDir,
		KeyDefaultTcode: &g.DefaultTcode,
		KeyDateFormat:   &g.DateFormat,
	}
}

func (g *GlobalConfig) set(key, value string) { setField(g.fields(), &g.Params, key, value) }
func (g *GlobalConfig) unset(key string) { unsetField(g.fields(), g.Params, key) }
func (g *GlobalConfig) toMap() map[string]string { return fieldMap(g.fields(), g.Params) }

// TcodeConfig holds the parameters of one transaction code.
type TcodeConfig struct {
	Variant        string
	Layout         string
	ColumnName     string
	DateRangeStart string
	DateRangeEnd   string
	ByDate         string
	SerialNumber   string
	TabNumber      string
	Params         map[string]string
}

func (t *TcodeConfig) fields() map[string]*string {
	return map[string]*string{
		KeyVariant:        &t.Variant,
		KeyLayout:         &t.Layout,
		KeyColumnName:     &t.ColumnName,
		KeyDateRangeStart: &t.DateRangeStart,
		KeyDateRangeEnd:   &t.DateRangeEnd,
		KeyByDate:         &t.ByDate,
		KeySerialNumber:   &t.SerialNumber,
		KeyTabNumber:      &t.TabNumber,
	}
}

func (t *TcodeConfig) set(key, value string) { setField(t.fields(), &t.Params, key, value) }
func (t *TcodeConfig) unset(key string) { unsetField(t.fields(), t.Params, key) }
func (t *TcodeConfig) toMap() map[string]string { return fieldMap(t.fields(), t.Params) }

// LoopConfig repeats one transaction code. Iterations and DelaySeconds are
// kept as strings exactly as written in the file.
type LoopConfig struct {
	Tcode        string
	Iterations   string
	DelaySeconds string
	Params       map[string]string
}

func (l *LoopConfig) fields() map[string]*string {
	return map[string]*string{
		KeyTcode:        &l.Tcode,
		KeyIterations:   &l.Iterations,
		KeyDelaySeconds: &l.DelaySeconds,
	}
}

func (l *LoopConfig) set(key, value string) { setField(l.fields(), &l.Params, key, value) }
func (l *LoopConfig) unset(key string) { unsetField(l.fields(), l.Params, key) }
func (l *LoopConfig) toMap() map[string]string { return fieldMap(l.fields(), l.Params) }

// SequenceConfig runs an ordered list of steps. Steps are persisted as a
// comma-separated string so the section stays flat.
type SequenceConfig struct {
	Steps           []string
	Iterations      string
	DelaySeconds    string
	IntervalSeconds string
	Params          map[string]string
}

func (s *SequenceConfig) fields() map[string]*string {
	return map[string]*string{
		KeyIterations:      &s.Iterations,
		KeyDelaySeconds:    &s.DelaySeconds,
		KeyIntervalSeconds: &s.IntervalSeconds,
	}
}

func (s *SequenceConfig) set(key, value string) {
	if key == KeySteps {
		s.Steps = splitSteps(value)
		return
	}
	setField(s.fields(), &s.Params, key, value)
}

func (s *SequenceConfig) unset(key string) {
	if key == KeySteps {
		s.Steps = nil
		return
	}
	unsetField(s.fields(), s.Params, key)
}

func (s *SequenceConfig) toMap() map[string]string {
	m := fieldMap(s.fields(), s.Params)
	if len(s.Steps) > 0 {
		m[KeySteps] = strings.Join(s.Steps, ",")
	}
	return m
}

func splitSteps(value string) []string {
	var steps []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			steps = append(steps, part)
		}
	}
	return steps
}

// mapSection adapts a plain string map (the build section) to section.
type mapSection map[string]string

func (m mapSection) set(key, value string) { m[key] = value }
func (m mapSection) unset(key string) { delete(m, key) }
func (m mapSection) toMap() map[string]string { return copyMap(m) }

func setField(fields map[string]*string, params *map[string]string, key, value string) {
	if f, ok := fields[key]; ok {
		*f = value
		return
	}
	if *params == nil {
		*params = make(map[string]string)
	}
	(*params)[key] = value
}

func unsetField(fields map[string]*string, params map[string]string, key string) {
	if f, ok := fields[key]; ok {
		*f = ""
		return
	}
	delete(params, key)
}

// fieldMap merges populated standard fields and params. Empty standard
// fields count as not configured.
func fieldMap(fields map[string]*string, params map[string]string) map[string]string {
	m := make(map[string]string, len(fields)+len(params))
	for k, v := range params {
		m[k] = v
	}
	for k, f := range fields {
		if *f != "" {
			m[k] = *f
		}
	}
	return m
}

func applyAll(s section, values map[string]string) {
	for _, k := range sortedKeys(values) {
		s.set(k, values[k])
	}
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
