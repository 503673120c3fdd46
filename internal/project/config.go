package project

import (
	"strings"

	"github.com/BurntSushi/toml"

	"spbg/internal/codeinfo"
	"spbg/internal/diag"
	"spbg/internal/types"
)

// Config is the content of spbg.toml. Every key is optional.
type Config struct {
	Generate GenerateConfig    `toml:"generate"`
	Class    ClassConfig       `toml:"class"`
	Build    BuildConfig       `toml:"build"`
	Types    map[string]string `toml:"types"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type GenerateConfig struct {
	Metadata     string `toml:"metadata"`
	Out          string `toml:"out"`
	RuntimeTypes string `toml:"runtime_types"`
	Indent       int    `toml:"indent"`
}

type ClassConfig struct {
	InputSetter  string `toml:"input_setter"`
	OutputGetter string `toml:"output_getter"`
	ParamField   string `toml:"param_field"`
	ParamAlias   string `toml:"param_alias"`
}

type BuildConfig struct {
	IncludeDirs []string `toml:"include_dirs"`
}

// DefaultConfig matches the toolchain's default output layout.
func DefaultConfig() Config {
	opts := codeinfo.DefaultOptions()
	return Config{
		Generate: GenerateConfig{
			Metadata:     "codeInfo.json",
			Out:          "python_out",
			RuntimeTypes: "rtwtypes.h",
			Indent:       2,
		},
		Class: ClassConfig{
			InputSetter:  opts.InputSetter,
			OutputGetter: opts.OutputGetter,
			ParamField:   opts.ParamField,
			ParamAlias:   opts.ParamAlias,
		},
	}
}

// LoadConfig reads path over the defaults: keys present in the file replace
// the default, absent keys keep it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	var file Config
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return Config{}, diag.Errorf(diag.CtxInvalidConfig, "%s: failed to parse TOML: %v", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, diag.Errorf(diag.CtxInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	set := func(dst *string, src string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = strings.TrimSpace(src)
		}
	}
	set(&cfg.Generate.Metadata, file.Generate.Metadata, "generate", "metadata")
	set(&cfg.Generate.Out, file.Generate.Out, "generate", "out")
	set(&cfg.Generate.RuntimeTypes, file.Generate.RuntimeTypes, "generate", "runtime_types")
	if meta.IsDefined("generate", "indent") {
		cfg.Generate.Indent = file.Generate.Indent
	}
	set(&cfg.Class.InputSetter, file.Class.InputSetter, "class", "input_setter")
	set(&cfg.Class.OutputGetter, file.Class.OutputGetter, "class", "output_getter")
	set(&cfg.Class.ParamField, file.Class.ParamField, "class", "param_field")
	set(&cfg.Class.ParamAlias, file.Class.ParamAlias, "class", "param_alias")
	if meta.IsDefined("build", "include_dirs") {
		cfg.Build.IncludeDirs = file.Build.IncludeDirs
	}
	if meta.IsDefined("types") {
		cfg.Types = file.Types
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no run could use.
func (c Config) Validate() error {
	where := c.Path
	if where == "" {
		where = "config"
	}
	if c.Generate.Indent < 1 {
		return diag.Errorf(diag.CtxInvalidConfig, "%s: [generate].indent must be at least 1, got %d", where, c.Generate.Indent)
	}
	required := []struct {
		key   string
		value string
	}{
		{"[generate].metadata", c.Generate.Metadata},
		{"[generate].out", c.Generate.Out},
		{"[generate].runtime_types", c.Generate.RuntimeTypes},
		{"[class].input_setter", c.Class.InputSetter},
		{"[class].output_getter", c.Class.OutputGetter},
		{"[class].param_field", c.Class.ParamField},
		{"[class].param_alias", c.Class.ParamAlias},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return diag.Errorf(diag.CtxInvalidConfig, "%s: %s must not be empty", where, r.key)
		}
	}
	for from, to := range c.Types {
		if strings.TrimSpace(to) == "" {
			return diag.Errorf(diag.CtxInvalidConfig, "%s: [types].%s maps to an empty name", where, from)
		}
	}
	return nil
}

// ExtractOptions returns the class naming the extractor needs.
func (c Config) ExtractOptions() codeinfo.Options {
	return codeinfo.Options{
		InputSetter:  c.Class.InputSetter,
		OutputGetter: c.Class.OutputGetter,
		ParamField:   c.Class.ParamField,
		ParamAlias:   c.Class.ParamAlias,
	}
}

// Aliases returns the default alias table extended by [types].
func (c Config) Aliases() map[string]string {
	return types.MergeAliases(c.Types)
}
