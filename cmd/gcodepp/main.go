//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
	"github.com/bcn3d/gcodepp/displayprogress"
	"github.com/bcn3d/gcodepp/gcode"
	"github.com/bcn3d/gcodepp/pause"
	"github.com/bcn3d/gcodepp/retract"
	"github.com/bcn3d/gcodepp/toolchange"
	"github.com/bcn3d/gcodepp/ufp"
)

var param struct {
	verbose  int
	config   string
	progress bool
}

func init() {
	pflag.CountVarP(&param.verbose, "verbose", "v", "Verbosity, repeat for more detail")
	pflag.StringVarP(&param.config, "config", "c", "", "YAML job file")
	pflag.BoolVarP(&param.progress, "progress", "p", false, "Show progress")

	pflag.CommandLine.SetInterspersed(false)
}

// NewRegistry creates a registry with every format and script
func NewRegistry() (reg *gcodepp.Registry) {
	reg = gcodepp.NewRegistry()

	gcode.Register(reg)
	ufp.Register(reg)

	displayprogress.Register(reg)
	pause.Register(reg)
	retract.Register(reg)
	toolchange.Register(reg)

	newInfo := func(env *gcodepp.Env) gcodepp.Script { return NewInfoCommand(env) }
	reg.RegisterScript("info", "Dumps information about the document", newInfo)

	return
}

func Usage(reg *gcodepp.Registry, env *gcodepp.Env) {
	out := os.Stderr

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  gcodepp [options...] INFILE [command [options...]...] OUTFILE")
	fmt.Fprintln(out, "  gcodepp [options...] --config job.yaml [INFILE [OUTFILE]]")
	fmt.Fprintln(out, "  gcodepp [options...] @cmdfile")
	fmt.Fprintln(out)
	pflag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	reg.ScriptUsage(out, env)
	reg.FormatterUsage(out)
	pause.PrintMethods(out)
}

// chain is a parsed command line: an input, then scripts and outputs
type chain struct {
	reg *gcodepp.Registry
	env *gcodepp.Env

	input *gcodepp.Format
	pipe  *gcodepp.Pipeline
	doc   *gcodepp.Document
}

func (ch *chain) newPipeline() {
	ch.pipe = gcodepp.NewPipeline(ch.env)
	if param.progress {
		ch.pipe.Progress = newConsoleProgress(os.Stderr)
	}
}

// flush runs the pending scripts
func (ch *chain) flush() (err error) {
	if len(ch.pipe.Steps) == 0 {
		return
	}

	ch.doc, err = ch.pipe.Run(ch.doc)
	if err != nil {
		return
	}

	ch.newPipeline()

	return
}

func (ch *chain) file(name string, args []string) (rest []string, err error) {
	format, err := ch.reg.NewFormat(name, args)
	if err != nil {
		return
	}
	rest = format.Args()

	if ch.input == nil {
		TraceVerbosef(VerbosityNotice, "Reading %v", name)
		ch.input = format
		ch.doc, err = format.Document()
		return
	}

	err = ch.flush()
	if err != nil {
		return
	}

	TraceVerbosef(VerbosityNotice, "Writing %v", name)
	err = format.SetDocument(ch.doc)

	return
}

func (ch *chain) script(name string, args []string) (rest []string, err error) {
	if ch.input == nil {
		err = fmt.Errorf("%s: no input file", name)
		return
	}

	script, err := ch.reg.NewScript(ch.env, name, args)
	if err != nil {
		return
	}
	rest = script.Args()

	TraceVerbosef(VerbosityInfo, "Adding %v %v", name, args[:len(args)-len(rest)])
	ch.pipe.Add(name, script)

	return
}

func (ch *chain) evaluate(args []string) (err error) {
	for len(args) > 0 {
		name := args[0]
		if ch.reg.HasScript(name) {
			args, err = ch.script(name, args[1:])
		} else {
			args, err = ch.file(name, args[1:])
		}
		if err != nil {
			return
		}
	}

	// Scripts with no output after them still run, for 'info'
	err = ch.flush()

	return
}

// job runs a job file; files on the command line override the job's
func (ch *chain) job(job *gcodepp.Job, args []string) (err error) {
	input, output := job.Input, job.Output
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	if len(args) > 2 {
		err = fmt.Errorf("%v: unexpected arguments with a job file", args[2:])
		return
	}

	if len(input) == 0 {
		err = errors.New("job has no input file")
		return
	}

	ch.pipe, err = job.Pipeline(ch.reg, ch.env)
	if err != nil {
		return
	}
	if param.progress {
		ch.pipe.Progress = newConsoleProgress(os.Stderr)
	}

	files := []string{input}
	if len(output) > 0 {
		files = append(files, output)
	}

	err = ch.evaluate(files)

	return
}

func run(args []string) (err error) {
	logger = NewLogger(os.Stderr, Verbosity(param.verbose))
	env := gcodepp.NewEnv(logger)
	reg := NewRegistry()

	args, err = ExpandArgs(args)
	if err != nil {
		return
	}

	ch := &chain{
		reg: reg,
		env: env,
	}
	ch.newPipeline()

	if len(param.config) > 0 {
		var file *os.File
		file, err = os.Open(param.config)
		if err != nil {
			return
		}
		var job *gcodepp.Job
		job, err = gcodepp.LoadJob(file)
		file.Close()
		if err == nil {
			err = ch.job(job, args)
		}
		if err != nil {
			err = fmt.Errorf("%s: %w", param.config, err)
		}
		return
	}

	if len(args) == 0 {
		Usage(reg, env)
		return
	}

	err = ch.evaluate(args)

	return
}

func main() {
	pflag.Parse()

	err := run(pflag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
