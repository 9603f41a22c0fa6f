// Package config loads the static-context options the core leaves to a
// host: the default collation, the implicit timezone, external variable
// bindings, and the glob-resolved set of source files a peripheral
// caller (a CLI, a batch job) compiles. None of this is read by the core
// packages themselves — internal/parse.StaticContext and facade.Selector
// are configured FROM an Options value, never the reverse.
//
// Three sources feed one Options value, in increasing precedence: a YAML
// file (LoadYAML), a .env file read into the process environment
// (LoadDotEnv), and command-line flags (RegisterFlags). A caller applies
// them in that order so flags always win.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oxhq/xpathcore/internal/collate"
	"github.com/oxhq/xpathcore/internal/parse"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// DefaultCollationURI is the collation every Options starts with: the
// Unicode codepoint collation, the processor default.
const DefaultCollationURI = "http://www.w3.org/2005/xpath-functions/collation/codepoint"

// Options is the static-context configuration a host supplies.
type Options struct {
	DefaultCollationURI    string            `yaml:"collation"`
	ImplicitTimezoneMinutes int              `yaml:"timezoneMinutes"`
	ExternalVariables      map[string]string `yaml:"externalVariables"`
	Include                []string          `yaml:"include"`
	Exclude                []string          `yaml:"exclude"`
	Verbose                bool              `yaml:"verbose"`
}

// DefaultOptions returns the baseline every loader starts from.
func DefaultOptions() *Options {
	return &Options{
		DefaultCollationURI: DefaultCollationURI,
		ExternalVariables:   make(map[string]string),
	}
}

// RegisterFlags wires pflag flags for every Options field onto fs (one
// flag per setting, read back into the returned Options after fs.Parse).
// A cobra command's own Flags() is a *pflag.FlagSet, so cmd/xpathcore's
// subcommands share this one registration helper.
func RegisterFlags(fs *pflag.FlagSet) *Options {
	o := DefaultOptions()
	fs.StringVar(&o.DefaultCollationURI, "collation", o.DefaultCollationURI,
		"default collation URI for unqualified string comparisons")
	fs.IntVar(&o.ImplicitTimezoneMinutes, "timezone-minutes", 0,
		"implicit timezone, in minutes east of UTC, for timezone-less calendar comparisons")
	fs.StringToStringVar(&o.ExternalVariables, "var", nil,
		"external variable binding as name=value, repeatable")
	fs.StringSliceVar(&o.Include, "include", nil, "glob pattern(s) of source files to include")
	fs.StringSliceVar(&o.Exclude, "exclude", nil, "glob pattern(s) of source files to exclude")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "enable verbose diagnostic output")
	return o
}

// LoadYAML merges the settings present in the YAML file at path into o.
// A missing file is not an error (YAML configuration is optional); a
// malformed one is.
func LoadYAML(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	var overlay Options
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	mergeYAML(o, &overlay)
	return nil
}

func mergeYAML(o, overlay *Options) {
	if overlay.DefaultCollationURI != "" {
		o.DefaultCollationURI = overlay.DefaultCollationURI
	}
	if overlay.ImplicitTimezoneMinutes != 0 {
		o.ImplicitTimezoneMinutes = overlay.ImplicitTimezoneMinutes
	}
	for k, v := range overlay.ExternalVariables {
		o.ExternalVariables[k] = v
	}
	if len(overlay.Include) > 0 {
		o.Include = append(o.Include, overlay.Include...)
	}
	if len(overlay.Exclude) > 0 {
		o.Exclude = append(o.Exclude, overlay.Exclude...)
	}
	o.Verbose = o.Verbose || overlay.Verbose
}

// LoadDotEnv reads path (or the first ".env" found on the usual godotenv
// search path when path is "") into the process environment, then layers
// XPATHCORE_COLLATION and XPATHCORE_VERBOSE, when set, onto o; no other
// variable is read. A missing .env file
// is not an error, the same tolerant default godotenv.Load() has.
func LoadDotEnv(path string, o *Options) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: loading .env: %w", err)
	}
	if v := os.Getenv("XPATHCORE_COLLATION"); v != "" {
		o.DefaultCollationURI = v
	}
	if v := os.Getenv("XPATHCORE_VERBOSE"); v == "1" || v == "true" {
		o.Verbose = true
	}
	return nil
}

// ResolveFiles expands Include against the file system, dropping any
// match also matched by Exclude, and returns the sorted, deduplicated
// result.
func (o *Options) ResolveFiles() ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range o.Include {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}
	for _, pattern := range o.Exclude {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid exclude pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			delete(seen, m)
		}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// StaticContext builds an internal/parse.StaticContext from o: the core
// function library, the collation o.DefaultCollationURI resolves to via
// a fresh collate.Registry, the implicit timezone, and one declared
// external variable (typed xs:untypedAtomic, the type every raw
// command-line value has until a caller casts it) per entry in
// o.ExternalVariables.
func (o *Options) StaticContext() (*parse.StaticContext, error) {
	registry := collate.NewRegistry()
	uri := o.DefaultCollationURI
	if uri == "" {
		uri = DefaultCollationURI
	}
	collator, err := registry.Resolve(uri)
	if err != nil {
		return nil, fmt.Errorf("config: resolving collation %q: %w", uri, err)
	}
	sc := parse.DefaultStaticContext()
	sc.DefaultCollation = collator
	sc.ImplicitTimezoneMinutes = o.ImplicitTimezoneMinutes
	sc.ExternalVariables = make(map[string]xdm.SequenceType, len(o.ExternalVariables))
	for name := range o.ExternalVariables {
		sc.ExternalVariables[name] = xdm.SequenceType{
			ItemType:    xdm.TypeUntypedAtomic,
			Cardinality: xdm.CardinalityExactlyOne,
		}
	}
	return sc, nil
}

// ExternalBindings returns a GroundedSequence per entry in
// o.ExternalVariables, keyed by variable name, ready to hand to
// facade.Selector.SetExternalVariable for every key (which maps the name
// to the VarKey internal/parse resolves a reference to that name to).
func (o *Options) ExternalBindings() map[string]*sequence.GroundedSequence {
	out := make(map[string]*sequence.GroundedSequence, len(o.ExternalVariables))
	for name, text := range o.ExternalVariables {
		out[name] = sequence.NewGroundedSequence([]sequence.Item{value.NewUntypedAtomic(text)})
	}
	return out
}
