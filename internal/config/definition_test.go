package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
)

func TestGetTcodeConfig_TcodeSectionWinsOverLoop(t *testing.T) {
	t.Parallel()

	def := &config.Definition{
		Global: &config.GlobalConfig{DefaultTcode: "A"},
		Tcodes: map[string]*config.TcodeConfig{"A": {Variant: "X"}},
		Loop:   &config.LoopConfig{Tcode: "A", Params: map[string]string{"A_variant": "Y", "extra": "e"}},
	}

	got, ok := def.GetTcodeConfig("A", true)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"tcode": "A", "variant": "X"}, got)
}

func TestGetTcodeConfig(t *testing.T) {
	t.Parallel()

	def := &config.Definition{
		Global: &config.GlobalConfig{DefaultTcode: "VT11"},
		Tcodes: map[string]*config.TcodeConfig{
			"VT11": {
				Variant:        "MYVARIANT",
				DateRangeStart: "04/01/2025",
				Params:         map[string]string{"plant": "1000"},
			},
			"EMPTY": {},
		},
		Loop: &config.LoopConfig{
			Tcode:      "VL06O",
			Iterations: "3",
			Params: map[string]string{
				"variant":       "SHARED",
				"VL06O_variant": "TARGETED",
				"VL06O_layout":  "L2",
				"delay_ms":      "100",
			},
		},
	}

	tests := []struct {
		name   string
		tcode  string
		loop   bool
		want   map[string]string
		wantOK bool
	}{
		{
			name:  "tcode_section_normal_run",
			tcode: "VT11",
			want: map[string]string{
				"tcode":            "VT11",
				"variant":          "MYVARIANT",
				"date_range_start": "04/01/2025",
				"plant":            "1000",
			},
			wantOK: true,
		},
		{
			name:  "tcode_section_loop_run_uses_loop_tcode",
			tcode: "VT11",
			loop:  true,
			want: map[string]string{
				"tcode":            "VL06O",
				"variant":          "MYVARIANT",
				"date_range_start": "04/01/2025",
				"plant":            "1000",
			},
			wantOK: true,
		},
		{
			name:  "loop_params_prefixed_keys_win",
			tcode: "VL06O",
			loop:  true,
			want: map[string]string{
				"tcode":    "VL06O",
				"variant":  "TARGETED",
				"layout":   "L2",
				"delay_ms": "100",
			},
			wantOK: true,
		},
		{
			name:   "no_section_normal_run_has_only_default_tcode",
			tcode:  "VL06O",
			want:   map[string]string{"tcode": "VT11"},
			wantOK: true,
		},
		{
			name:   "empty_section_still_reports_default_tcode",
			tcode:  "EMPTY",
			want:   map[string]string{"tcode": "VT11"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := def.GetTcodeConfig(tt.tcode, tt.loop)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTcodeConfig_MissingReturnsFalse(t *testing.T) {
	t.Parallel()

	got, ok := config.Default().GetTcodeConfig("UNKNOWN_TCODE", false)
	assert.False(t, ok)
	assert.Nil(t, got)

	def := &config.Definition{Tcodes: map[string]*config.TcodeConfig{"EMPTY": {}}}
	got, ok = def.GetTcodeConfig("EMPTY", false)
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = def.GetTcodeConfig("EMPTY", true)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestAccessors_AutoVivifyGlobal(t *testing.T) {
	t.Parallel()

	def := &config.Definition{}
	assert.Equal(t, config.DefaultInstanceID, def.InstanceID())
	assert.Equal(t, config.DefaultReportsDir(), def.ReportsDir())
	assert.Nil(t, def.Global)

	def.SetInstanceID("qa")
	require.NotNil(t, def.Global)
	assert.Equal(t, "qa", def.InstanceID())
	assert.Equal(t, config.DefaultReportsDir(), def.Global.ReportsDir)

	def = &config.Definition{}
	def.SetReportsDir("/data/reports")
	assert.Equal(t, "/data/reports", def.ReportsDir())
	assert.Equal(t, config.DefaultInstanceID, def.Global.InstanceID)
}

func TestSetValue(t *testing.T) {
	t.Parallel()

	def := &config.Definition{}

	require.NoError(t, def.SetValue("tcode.VT11", "variant", "V1"))
	require.NoError(t, def.SetValue("tcode:VT11", "plant", "1000"))
	require.NoError(t, def.SetValue("loop", "iterations", "4"))
	require.NoError(t, def.SetValue("sequence", "steps", "VT11, VL06O"))
	require.NoError(t, def.SetValue("global", "default_tcode", "VT11"))
	require.NoError(t, def.SetValue("build", "version", "2.0"))

	assert.Equal(t, &config.TcodeConfig{Variant: "V1", Params: map[string]string{"plant": "1000"}}, def.Tcodes["VT11"])
	assert.Equal(t, "4", def.Loop.Iterations)
	assert.Equal(t, []string{"VT11", "VL06O"}, def.Sequence.Steps)
	assert.Equal(t, "VT11", def.DefaultTcode())
	assert.Equal(t, config.DefaultInstanceID, def.Global.InstanceID)
	assert.Equal(t, map[string]string{"version": "2.0"}, def.Build)

	values, ok := def.Section("sequence")
	require.True(t, ok)
	assert.Equal(t, "VT11,VL06O", values["steps"])
}

func TestSetValue_Errors(t *testing.T) {
	t.Parallel()

	def := &config.Definition{}

	tests := []struct {
		name    string
		section string
		key     string
	}{
		{name: "unknown_section", section: "bogus", key: "k"},
		{name: "legacy_section", section: "sap_config", key: "k"},
		{name: "tcode_without_code", section: "tcode.", key: "k"},
		{name: "empty_key", section: "global", key: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := def.SetValue(tt.section, tt.key, "v")
			var cfgErr saerrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestUnsetValueAndRemoveSection(t *testing.T) {
	t.Parallel()

	def, err := config.Parse([]byte(layeredExample))
	require.NoError(t, err)

	require.NoError(t, def.UnsetValue("tcode.VT11", "layout"))
	require.NoError(t, def.UnsetValue("loop", "missing_key"))
	assert.Empty(t, def.Tcodes["VT11"].Layout)

	values, ok := def.Section("tcode.VT11")
	require.True(t, ok)
	assert.NotContains(t, values, "layout")

	require.NoError(t, def.RemoveSection("loop"))
	assert.Nil(t, def.Loop)
	_, ok = def.Section("loop")
	assert.False(t, ok)

	require.NoError(t, def.RemoveSection("tcode.VT11"))
	assert.NotContains(t, def.Tcodes, "VT11")

	assert.Error(t, def.UnsetValue("sequence", "steps"))
	assert.Error(t, def.RemoveSection("tcode.NOPE"))
}

func TestForeignSectionEditing(t *testing.T) {
	t.Parallel()

	def, err := config.Parse([]byte("[custom_extra]\nfoo = \"bar\"\n\n[other]\nx = \"1\"\n\n[global]\ninstance_id = \"qa\"\n"))
	require.NoError(t, err)

	require.NoError(t, def.SetValue("custom_extra", "foo", "baz"))
	require.NoError(t, def.SetValue("custom_extra", "added", "yes"))
	values, ok := def.Section("custom_extra")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"foo": "baz", "added": "yes"}, values)

	require.NoError(t, def.UnsetValue("custom_extra", "foo"))
	assert.Equal(t, map[string]string{"added": "yes"}, def.Foreign["custom_extra"])

	require.NoError(t, def.RemoveSection("custom_extra"))
	_, ok = def.Section("custom_extra")
	assert.False(t, ok)

	var names []string
	for _, s := range def.Sections() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"other", "global"}, names)

	// Foreign sections are only editable once they exist in the file.
	err = def.SetValue("brand_new", "k", "v")
	var cfgErr saerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "unknown section", cfgErr.Message)
	assert.NotContains(t, def.Foreign, "brand_new")
}

func TestSections_ListsPresentSectionsInSaveOrder(t *testing.T) {
	t.Parallel()

	def, err := config.Parse([]byte(layeredExample + "\n[custom_extra]\nfoo = \"bar\"\n"))
	require.NoError(t, err)

	var names []string
	for _, s := range def.Sections() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"custom_extra", "global", "tcode.VT11", "loop"}, names)
	assert.Equal(t, []string{"VT11"}, def.TcodeNames())
}
