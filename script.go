//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
)

// Env is handed to every script when it is created
type Env struct {
	Log zerolog.Logger
}

// NewEnv creates an environment logging to the given logger
func NewEnv(log zerolog.Logger) (env *Env) {
	env = &Env{
		Log: log,
	}

	return
}

// Script is one post-processing pass over a document
type Script interface {
	Parse(args []string) (err error)
	Args() (args []string)
	NArg() int
	PrintDefaults()

	// Filter returns the processed document. The input is not modified.
	Filter(input *Document) (output *Document, err error)
}

// NewScript creates a script with default options
type NewScript func(env *Env) (script Script)

type scriptEntry struct {
	newScript   NewScript
	description string
}

// ErrUnknownScript is returned for script names that are not registered
type ErrUnknownScript string

func (e ErrUnknownScript) Error() string {
	return fmt.Sprintf("%s: unknown script", string(e))
}

// Registry maps file suffixes to formats, and names to scripts
type Registry struct {
	formatters map[string]NewFormatter
	scripts    map[string]scriptEntry
}

// NewRegistry creates an empty registry
func NewRegistry() (reg *Registry) {
	reg = &Registry{
		formatters: map[string]NewFormatter{},
		scripts:    map[string]scriptEntry{},
	}

	return
}

// RegisterFormatter adds a file format by suffix
func (reg *Registry) RegisterFormatter(suffix string, newFormatter NewFormatter) {
	reg.formatters[suffix] = newFormatter
}

// RegisterScript adds a script by name
func (reg *Registry) RegisterScript(name string, description string, newScript NewScript) {
	reg.scripts[name] = scriptEntry{newScript: newScript, description: description}
}

// Scripts lists the registered script names
func (reg *Registry) Scripts() (list []string) {
	for name := range reg.scripts {
		list = append(list, name)
	}
	sort.Strings(list)

	return
}

// HasScript checks for a registered script
func (reg *Registry) HasScript(name string) (ok bool) {
	_, ok = reg.scripts[name]
	return
}

// NewScript creates a script by name, with its options parsed from args
func (reg *Registry) NewScript(env *Env, name string, args []string) (script Script, err error) {
	entry, ok := reg.scripts[name]
	if !ok {
		err = ErrUnknownScript(name)
		return
	}

	script = entry.newScript(env)

	err = script.Parse(args)
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		script = nil
		return
	}

	return
}

// ScriptUsage lists every script and its options
func (reg *Registry) ScriptUsage(output io.Writer, env *Env) {
	for _, name := range reg.Scripts() {
		entry := reg.scripts[name]
		fmt.Fprintln(output)
		fmt.Fprintf(output, "  %s - %s\n", name, entry.description)
		fmt.Fprintln(output)
		entry.newScript(env).PrintDefaults()
	}
}
